package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory/src/cache"
	"inventory/src/metrics"
	"inventory/src/models"
	"inventory/src/repositories"
	"inventory/src/utils"

	"github.com/shopspring/decimal"
)

type LifecycleServiceI interface {
	Assign(ctx context.Context, actor models.Actor, assetID int, assignee string, notes *string) (*AssignResult, error)
	Return(ctx context.Context, actor models.Actor, assetID int, notes *string) (*TransitionResult, error)
	SendToRepair(ctx context.Context, actor models.Actor, assetID int, notes *string) (*TransitionResult, error)
	ExitRepair(ctx context.Context, actor models.Actor, assetID int, notes *string, cost string) (*TransitionResult, error)
	Retire(ctx context.Context, actor models.Actor, assetID int, notes *string) (*TransitionResult, error)
}

type TransitionResult struct {
	AssetID int                   `json:"asset_id"`
	From    models.AssetStatus    `json:"from"`
	Status  models.AssetStatus    `json:"status"`
	Event   models.LifecycleEvent `json:"event"`
}

type AssignResult struct {
	TransitionResult
	AssignmentID int       `json:"assignment_id"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// LifecycleService moves assets between in_stock, assigned, repair and
// retired. Each operation locks the asset row and writes the status, the
// assignment change, one lifecycle event and one audit entry in a single
// transaction.
//
// An assigned asset keeps its assignment while in repair: ExitRepair sends it
// back to assigned, and Return closes the assignment without leaving repair.
type LifecycleService struct {
	store repositories.Store
	cards cache.AssetCardCache
	now   func() time.Time
}

func NewLifecycleService(store repositories.Store, cards cache.AssetCardCache, now func() time.Time) *LifecycleService {
	if now == nil {
		now = time.Now
	}
	if cards == nil {
		cards = cache.NewNoopCache()
	}
	return &LifecycleService{store: store, cards: cards, now: now}
}

// step is what a transition decided to do once the asset is locked.
type step struct {
	status     models.AssetStatus
	cost       *decimal.Decimal
	action     models.AuditAction
	assignment *models.Assignment
	details    map[string]any
}

type stepFunc func(ctx context.Context, r repositories.Repositories, asset *models.Asset, now time.Time) (*step, error)

func (s *LifecycleService) transition(ctx context.Context, actor models.Actor, assetID int, eventType models.EventType, notes *string, fn stepFunc) (*TransitionResult, *step, error) {
	logger := utils.LoggerFromContext(ctx).WithField("asset_id", assetID).WithField("event", eventType)

	if err := requireAdmin(actor); err != nil {
		metrics.TransitionsTotal.WithLabelValues(string(eventType), metrics.OutcomeRejected).Inc()
		return nil, nil, err
	}

	var result *TransitionResult
	var taken *step
	err := s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		asset, err := r.Assets.GetForUpdate(ctx, assetID)
		if err != nil {
			return storageError(err, fmt.Sprintf("asset %d", assetID))
		}
		now := s.now()

		st, err := fn(ctx, r, asset, now)
		if err != nil {
			return err
		}

		if st.status != asset.Status {
			if err := r.Assets.UpdateStatus(ctx, assetID, st.status); err != nil {
				return storageError(err, "update asset status")
			}
		}

		event := &models.LifecycleEvent{
			AssetID:    assetID,
			EventType:  eventType,
			EventAt:    now,
			Notes:      trimmed(notes),
			ActorID:    optional(actor.ID),
			RepairCost: st.cost,
		}
		if err := r.Events.Create(ctx, event); err != nil {
			return storageError(err, "record lifecycle event")
		}

		newValues := map[string]any{"status": st.status}
		for k, v := range st.details {
			newValues[k] = v
		}
		if err := writeAudit(ctx, r, actor, auditRecord{
			action:      st.action,
			entityType:  models.EntityAsset,
			entityID:    itoa(assetID),
			description: fmt.Sprintf("%s: %s -> %s", asset.Label, asset.Status, st.status),
			oldValues:   map[string]any{"status": asset.Status},
			newValues:   newValues,
		}); err != nil {
			return storageError(err, "record audit entry")
		}

		result = &TransitionResult{AssetID: assetID, From: asset.Status, Status: st.status, Event: *event}
		taken = st
		return nil
	})
	if err != nil {
		outcome := metrics.OutcomeFailed
		if !errors.Is(err, ErrPersistence) && !errors.Is(err, ErrConcurrencyConflict) {
			outcome = metrics.OutcomeRejected
		}
		metrics.TransitionsTotal.WithLabelValues(string(eventType), outcome).Inc()
		logger.WithError(err).Info("lifecycle transition refused")
		return nil, nil, storageError(err, fmt.Sprintf("%s asset %d", eventType, assetID))
	}

	s.cards.Invalidate(ctx, assetID)
	metrics.TransitionsTotal.WithLabelValues(string(eventType), metrics.OutcomeSuccess).Inc()
	logger.WithField("from", result.From).WithField("to", result.Status).Info("lifecycle transition applied")
	return result, taken, nil
}

func (s *LifecycleService) Assign(ctx context.Context, actor models.Actor, assetID int, assignee string, notes *string) (*AssignResult, error) {
	name, email, err := ParseAssignee(assignee)
	if err != nil {
		return nil, err
	}

	result, st, err := s.transition(ctx, actor, assetID, models.EventTypeAssigned, notes,
		func(ctx context.Context, r repositories.Repositories, asset *models.Asset, now time.Time) (*step, error) {
			switch asset.Status {
			case models.AssetStatusRetired:
				return nil, ErrAssetRetired
			case models.AssetStatusRepair:
				return nil, ErrAssetInRepair
			case models.AssetStatusAssigned:
				return nil, ErrAlreadyAssigned
			}

			assignment := &models.Assignment{
				AssetID:       asset.ID,
				AssigneeName:  name,
				AssigneeEmail: email,
				AssignedAt:    now,
				Notes:         trimmed(notes),
			}
			if err := r.Assignments.Create(ctx, assignment); err != nil {
				if errors.Is(err, repositories.ErrConflict) {
					return nil, ErrAlreadyAssigned
				}
				return nil, storageError(err, "create assignment")
			}
			return &step{
				status:     models.AssetStatusAssigned,
				action:     models.AuditAssetAssigned,
				assignment: assignment,
				details:    map[string]any{"assignee_name": name, "assignee_email": email},
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return &AssignResult{
		TransitionResult: *result,
		AssignmentID:     st.assignment.ID,
		AssignedAt:       st.assignment.AssignedAt,
	}, nil
}

// Return closes the active assignment. An asset returned while in repair
// stays in repair.
func (s *LifecycleService) Return(ctx context.Context, actor models.Actor, assetID int, notes *string) (*TransitionResult, error) {
	result, _, err := s.transition(ctx, actor, assetID, models.EventTypeReturned, notes,
		func(ctx context.Context, r repositories.Repositories, asset *models.Asset, now time.Time) (*step, error) {
			if asset.Status == models.AssetStatusRetired {
				return nil, ErrAssetRetired
			}
			active, err := r.Assignments.GetActiveByAssetID(ctx, asset.ID)
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrNoActiveAssignment
			} else if err != nil {
				return nil, storageError(err, "load active assignment")
			}
			if err := r.Assignments.Close(ctx, active.ID, now); err != nil {
				return nil, storageError(err, "close assignment")
			}

			status := asset.Status
			if status == models.AssetStatusAssigned {
				status = models.AssetStatusInStock
			}
			return &step{
				status:  status,
				action:  models.AuditAssetReturned,
				details: map[string]any{"assignment_id": active.ID, "assignee_name": active.AssigneeName},
			}, nil
		})
	return result, err
}

// SendToRepair keeps any active assignment open for the repair episode.
func (s *LifecycleService) SendToRepair(ctx context.Context, actor models.Actor, assetID int, notes *string) (*TransitionResult, error) {
	result, _, err := s.transition(ctx, actor, assetID, models.EventTypeRepair, notes,
		func(ctx context.Context, r repositories.Repositories, asset *models.Asset, now time.Time) (*step, error) {
			switch asset.Status {
			case models.AssetStatusRetired:
				return nil, ErrAssetRetired
			case models.AssetStatusRepair:
				return nil, ErrAlreadyInRepair
			}
			return &step{status: models.AssetStatusRepair, action: models.AuditAssetSentToRepair}, nil
		})
	return result, err
}

// ExitRepair returns the asset to its holder when an assignment is still
// open, otherwise to stock. Cost accepts "," as the decimal separator.
func (s *LifecycleService) ExitRepair(ctx context.Context, actor models.Actor, assetID int, notes *string, cost string) (*TransitionResult, error) {
	amount, err := ParseCost(cost)
	if err != nil {
		return nil, err
	}

	result, _, err := s.transition(ctx, actor, assetID, models.EventTypeMaintenance, notes,
		func(ctx context.Context, r repositories.Repositories, asset *models.Asset, now time.Time) (*step, error) {
			switch asset.Status {
			case models.AssetStatusRetired:
				return nil, ErrAssetRetired
			case models.AssetStatusRepair:
			default:
				return nil, ErrAssetNotInRepair
			}

			status := models.AssetStatusInStock
			if _, err := r.Assignments.GetActiveByAssetID(ctx, asset.ID); err == nil {
				status = models.AssetStatusAssigned
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return nil, storageError(err, "load active assignment")
			}

			st := &step{status: status, action: models.AuditAssetRepairExited, cost: amount}
			if amount != nil {
				st.details = map[string]any{"repair_cost": amount.StringFixed(2)}
			}
			return st, nil
		})
	return result, err
}

// Retire is terminal. Any assignment still open is closed with it.
func (s *LifecycleService) Retire(ctx context.Context, actor models.Actor, assetID int, notes *string) (*TransitionResult, error) {
	result, _, err := s.transition(ctx, actor, assetID, models.EventTypeRetired, notes,
		func(ctx context.Context, r repositories.Repositories, asset *models.Asset, now time.Time) (*step, error) {
			if asset.Status == models.AssetStatusRetired {
				return nil, ErrAssetAlreadyRetired
			}
			st := &step{status: models.AssetStatusRetired, action: models.AuditAssetRetired}

			active, err := r.Assignments.GetActiveByAssetID(ctx, asset.ID)
			switch {
			case err == nil:
				if err := r.Assignments.Close(ctx, active.ID, now); err != nil {
					return nil, storageError(err, "close assignment")
				}
				st.details = map[string]any{"closed_assignment_id": active.ID}
			case !errors.Is(err, repositories.ErrNotFound):
				return nil, storageError(err, "load active assignment")
			}
			return st, nil
		})
	return result, err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(strings.TrimSpace(*s))
}

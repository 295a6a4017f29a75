package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory/src/models"
	"inventory/src/repositories"
	"inventory/src/utils"
)

type IncidentServiceI interface {
	Report(ctx context.Context, actor models.Actor, assetID int, report IncidentReport) (*models.Incident, error)
	Get(ctx context.Context, id int) (*models.Incident, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id int, status models.IncidentStatus) (*models.Incident, error)
	Assign(ctx context.Context, actor models.Actor, id int, assignee string) (*models.Incident, error)
}

type IncidentReport struct {
	Type        models.IncidentType
	Severity    models.IncidentSeverity
	Description string
	Location    string
}

type IncidentService struct {
	store repositories.Store
	now   func() time.Time
}

func NewIncidentService(store repositories.Store, now func() time.Time) *IncidentService {
	if now == nil {
		now = time.Now
	}
	return &IncidentService{store: store, now: now}
}

// Report files an incident against an asset. Any signed-in user may report.
func (s *IncidentService) Report(ctx context.Context, actor models.Actor, assetID int, report IncidentReport) (*models.Incident, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: sign in to report an incident", ErrForbidden)
	}
	if !report.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown incident type %q", ErrInvalidInput, report.Type)
	}
	if report.Severity == "" {
		report.Severity = models.SeverityMedium
	}
	if !report.Severity.Valid() {
		return nil, fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, report.Severity)
	}
	description := strings.TrimSpace(report.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	reporter := actor.Email
	if reporter == "" {
		reporter = actor.ID
	}
	incident := &models.Incident{
		AssetID:         assetID,
		IncidentType:    report.Type,
		Severity:        report.Severity,
		Status:          models.IncidentOpen,
		Description:     description,
		Location:        optional(strings.TrimSpace(report.Location)),
		ReportedBy:      reporter,
		ReportedByEmail: optional(actor.Email),
	}
	err := s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		if _, err := r.Assets.GetByID(ctx, assetID); err != nil {
			return storageError(err, fmt.Sprintf("asset %d", assetID))
		}
		if err := r.Incidents.Create(ctx, incident); err != nil {
			return storageError(err, "create incident")
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditIncidentReported,
			entityType:  models.EntityIncident,
			entityID:    itoa(incident.ID),
			description: fmt.Sprintf("%s on asset %d", incident.IncidentType, assetID),
			newValues:   incident,
		})
	})
	if err != nil {
		return nil, storageError(err, "report incident")
	}

	utils.LoggerFromContext(ctx).WithField("incident_id", incident.ID).WithField("asset_id", assetID).Info("incident reported")
	return s.Get(ctx, incident.ID)
}

func (s *IncidentService) Get(ctx context.Context, id int) (*models.Incident, error) {
	incident, err := s.store.Repos().Incidents.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("incident %d", id))
	}
	return incident, nil
}

func (s *IncidentService) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	incidents, err := s.store.Repos().Incidents.List(ctx, filter)
	return incidents, storageError(err, "list incidents")
}

// UpdateStatus stamps resolved_at when the incident becomes resolved or
// closed and clears it when the incident is reopened.
func (s *IncidentService) UpdateStatus(ctx context.Context, actor models.Actor, id int, status models.IncidentStatus) (*models.Incident, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown incident status %q", ErrInvalidInput, status)
	}

	err := s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		current, err := r.Incidents.GetByID(ctx, id)
		if err != nil {
			return storageError(err, fmt.Sprintf("incident %d", id))
		}
		now := s.now()

		var resolvedAt *time.Time
		switch {
		case status.Settled() && current.ResolvedAt != nil:
			resolvedAt = current.ResolvedAt
		case status.Settled():
			resolvedAt = &now
		}
		if err := r.Incidents.UpdateStatus(ctx, id, status, resolvedAt, now); err != nil {
			return storageError(err, "update incident status")
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditIncidentStatusChange,
			entityType:  models.EntityIncident,
			entityID:    itoa(id),
			description: fmt.Sprintf("%s -> %s", current.Status, status),
			oldValues:   map[string]any{"status": current.Status},
			newValues:   map[string]any{"status": status},
		})
	})
	if err != nil {
		return nil, storageError(err, "update incident status")
	}
	return s.Get(ctx, id)
}

// Assign hands the incident to a person given as "Name <email>". Empty text
// unassigns it.
func (s *IncidentService) Assign(ctx context.Context, actor models.Actor, id int, assignee string) (*models.Incident, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var name, email *string
	if strings.TrimSpace(assignee) != "" {
		n, e, err := ParseAssignee(assignee)
		if err != nil {
			return nil, err
		}
		name, email = &n, e
	}

	err := s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		current, err := r.Incidents.GetByID(ctx, id)
		if err != nil {
			return storageError(err, fmt.Sprintf("incident %d", id))
		}
		if err := r.Incidents.Assign(ctx, id, name, email, s.now()); err != nil {
			return storageError(err, "assign incident")
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:     models.AuditIncidentAssigned,
			entityType: models.EntityIncident,
			entityID:   itoa(id),
			oldValues:  map[string]any{"assigned_to": current.AssignedTo, "assigned_to_email": current.AssignedToEmail},
			newValues:  map[string]any{"assigned_to": name, "assigned_to_email": email},
		})
	})
	if err != nil {
		return nil, storageError(err, "assign incident")
	}
	return s.Get(ctx, id)
}

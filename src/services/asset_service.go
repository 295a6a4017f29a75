package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"inventory/src/cache"
	"inventory/src/metrics"
	"inventory/src/models"
	"inventory/src/repositories"
	"inventory/src/utils"
)

type AssetServiceI interface {
	Create(ctx context.Context, actor models.Actor, fields AssetFields) (*models.Asset, error)
	Edit(ctx context.Context, actor models.Actor, assetID int, fields AssetFields) (*models.Asset, error)
	Delete(ctx context.Context, actor models.Actor, assetID int) error
	Get(ctx context.Context, assetID int) (*AssetDetail, error)
	List(ctx context.Context, filter models.AssetFilter) ([]models.AssetOverview, int, error)
	Stats(ctx context.Context) (*models.InventoryStats, error)
	Assignments(ctx context.Context, assetID int) ([]models.Assignment, error)
	PublicCard(ctx context.Context, assetID int) (*models.PublicAssetCard, error)
	ExpiringWarranties(ctx context.Context, within time.Duration) ([]models.AssetOverview, error)
}

// AssetFields carries the editable asset fields. Nil leaves a field unchanged
// on edit. An empty Category clears the category.
type AssetFields struct {
	Label         *string
	SerialNo      *string
	Category      *string
	PurchasedAt   *time.Time
	PurchasePrice *string
	Supplier      *string
	WarrantyEnd   *time.Time
	Notes         *string
}

type AssetDetail struct {
	Asset            models.Asset            `json:"asset"`
	Category         *models.AssetCategory   `json:"category"`
	ActiveAssignment *models.Assignment      `json:"active_assignment"`
	LastAssignment   *models.Assignment      `json:"last_assignment"`
	Timeline         []models.LifecycleEvent `json:"timeline"`
	WarrantyDaysLeft *int                    `json:"warranty_days_left"`
	PublicURL        string                  `json:"public_url"`
}

type AssetService struct {
	store         repositories.Store
	categories    CategoryServiceI
	cards         cache.AssetCardCache
	publicBaseURL string
	now           func() time.Time
}

func NewAssetService(store repositories.Store, categories CategoryServiceI, cards cache.AssetCardCache, publicBaseURL string, now func() time.Time) *AssetService {
	if now == nil {
		now = time.Now
	}
	if cards == nil {
		cards = cache.NewNoopCache()
	}
	return &AssetService{
		store:         store,
		categories:    categories,
		cards:         cards,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           now,
	}
}

// QRSlug is the stable public lookup path of an asset.
func QRSlug(assetID int) string {
	return fmt.Sprintf("asset/%d", assetID)
}

// resolve validates fields and turns them into storable details, resolving the
// category outside of any caller transaction.
func (s *AssetService) resolve(ctx context.Context, fields AssetFields) (models.AssetDetails, error) {
	var d models.AssetDetails
	if fields.Label != nil {
		label := strings.TrimSpace(*fields.Label)
		if label == "" {
			return d, ErrInvalidLabel
		}
		d.Label = &label
	}
	if fields.PurchasePrice != nil {
		price, err := parsePrice(*fields.PurchasePrice)
		if err != nil {
			return d, err
		}
		d.PurchasePrice = price
	}
	if fields.Category != nil {
		if strings.TrimSpace(*fields.Category) == "" {
			d.ClearCategory = true
		} else {
			category, err := s.categories.GetOrCreate(ctx, *fields.Category)
			if err != nil {
				return d, err
			}
			d.CategoryID = &category.ID
		}
	}
	d.SerialNo = fields.SerialNo
	d.PurchasedAt = fields.PurchasedAt
	d.Supplier = fields.Supplier
	d.WarrantyEnd = fields.WarrantyEnd
	d.Notes = fields.Notes
	return d, nil
}

func (s *AssetService) Create(ctx context.Context, actor models.Actor, fields AssetFields) (*models.Asset, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if fields.Label == nil {
		return nil, ErrInvalidLabel
	}
	d, err := s.resolve(ctx, fields)
	if err != nil {
		return nil, err
	}

	asset := &models.Asset{
		Label:         *d.Label,
		SerialNo:      trimmed(d.SerialNo),
		CategoryID:    d.CategoryID,
		Status:        models.AssetStatusInStock,
		PurchasedAt:   d.PurchasedAt,
		PurchasePrice: d.PurchasePrice,
		Supplier:      trimmed(d.Supplier),
		WarrantyEnd:   d.WarrantyEnd,
		Notes:         trimmed(d.Notes),
	}
	err = s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		if err := r.Assets.Create(ctx, asset); err != nil {
			return storageError(err, "create asset")
		}
		slug := QRSlug(asset.ID)
		if err := r.Assets.SetQRSlug(ctx, asset.ID, slug); err != nil {
			return storageError(err, "set qr slug")
		}
		asset.QRSlug = &slug

		if err := r.Events.Create(ctx, &models.LifecycleEvent{
			AssetID:   asset.ID,
			EventType: models.EventTypeCreated,
			EventAt:   s.now(),
			ActorID:   optional(actor.ID),
		}); err != nil {
			return storageError(err, "record lifecycle event")
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditAssetCreated,
			entityType:  models.EntityAsset,
			entityID:    itoa(asset.ID),
			description: asset.Label,
			newValues:   asset,
		})
	})
	if err != nil {
		return nil, storageError(err, "create asset")
	}

	utils.LoggerFromContext(ctx).WithField("asset_id", asset.ID).Info("asset created")
	return asset, nil
}

// Edit changes non-lifecycle fields. Status is never touched here.
func (s *AssetService) Edit(ctx context.Context, actor models.Actor, assetID int, fields AssetFields) (*models.Asset, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.store.Repos().Assets.GetByID(ctx, assetID); err != nil {
		return nil, storageError(err, fmt.Sprintf("asset %d", assetID))
	}
	d, err := s.resolve(ctx, fields)
	if err != nil {
		return nil, err
	}

	var updated *models.Asset
	err = s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		before, err := r.Assets.GetForUpdate(ctx, assetID)
		if err != nil {
			return storageError(err, fmt.Sprintf("asset %d", assetID))
		}
		if err := r.Assets.UpdateDetails(ctx, assetID, d); err != nil {
			return storageError(err, "update asset")
		}
		if updated, err = r.Assets.GetByID(ctx, assetID); err != nil {
			return storageError(err, "reload asset")
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditAssetUpdated,
			entityType:  models.EntityAsset,
			entityID:    itoa(assetID),
			description: updated.Label,
			oldValues:   before,
			newValues:   updated,
		})
	})
	if err != nil {
		return nil, storageError(err, "edit asset")
	}

	s.cards.Invalidate(ctx, assetID)
	return updated, nil
}

// Delete hard-deletes the asset with its assignments, events and incidents,
// bypassing the lifecycle.
func (s *AssetService) Delete(ctx context.Context, actor models.Actor, assetID int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	err := s.store.RunInTx(ctx, func(r repositories.Repositories) error {
		asset, err := r.Assets.GetForUpdate(ctx, assetID)
		if err != nil {
			return storageError(err, fmt.Sprintf("asset %d", assetID))
		}
		if err := r.Assets.Delete(ctx, assetID); err != nil {
			return storageError(err, "delete asset")
		}
		return writeAudit(ctx, r, actor, auditRecord{
			action:      models.AuditAssetDeleted,
			entityType:  models.EntityAsset,
			entityID:    itoa(assetID),
			description: asset.Label,
			oldValues:   asset,
		})
	})
	if err != nil {
		return storageError(err, "delete asset")
	}

	s.cards.Invalidate(ctx, assetID)
	utils.LoggerFromContext(ctx).WithField("asset_id", assetID).Info("asset deleted")
	return nil
}

func (s *AssetService) Get(ctx context.Context, assetID int) (*AssetDetail, error) {
	r := s.store.Repos()

	asset, err := r.Assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("asset %d", assetID))
	}
	detail := &AssetDetail{Asset: *asset}

	if asset.CategoryID != nil {
		category, err := r.Categories.GetByID(ctx, *asset.CategoryID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, storageError(err, "load category")
		}
		detail.Category = category
	}

	last, err := r.Assignments.GetLastByAssetID(ctx, assetID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, storageError(err, "load assignments")
	}
	detail.LastAssignment = last
	if last != nil && last.Active() {
		detail.ActiveAssignment = last
	}

	if detail.Timeline, err = r.Events.ListByAssetID(ctx, assetID); err != nil {
		return nil, storageError(err, "load timeline")
	}

	if asset.WarrantyEnd != nil {
		days := daysUntil(s.now(), *asset.WarrantyEnd)
		detail.WarrantyDaysLeft = &days
	}
	slug := QRSlug(assetID)
	if asset.QRSlug != nil {
		slug = *asset.QRSlug
	}
	detail.PublicURL = s.publicBaseURL + "/" + slug
	return detail, nil
}

func (s *AssetService) List(ctx context.Context, filter models.AssetFilter) ([]models.AssetOverview, int, error) {
	assets, total, err := s.store.Repos().Assets.List(ctx, filter)
	if err != nil {
		return nil, 0, storageError(err, "list assets")
	}
	return assets, total, nil
}

func (s *AssetService) Stats(ctx context.Context) (*models.InventoryStats, error) {
	stats, err := s.store.Repos().Assets.Stats(ctx)
	return stats, storageError(err, "inventory stats")
}

func (s *AssetService) Assignments(ctx context.Context, assetID int) ([]models.Assignment, error) {
	r := s.store.Repos()
	if _, err := r.Assets.GetByID(ctx, assetID); err != nil {
		return nil, storageError(err, fmt.Sprintf("asset %d", assetID))
	}
	assignments, err := r.Assignments.ListByAssetID(ctx, assetID)
	return assignments, storageError(err, "list assignments")
}

// PublicCard returns what anyone scanning the QR code may see. The holder's
// name is only shown while the asset is assigned.
func (s *AssetService) PublicCard(ctx context.Context, assetID int) (*models.PublicAssetCard, error) {
	if card, ok := s.cards.Get(ctx, assetID); ok {
		metrics.PublicCardCache.WithLabelValues("hit").Inc()
		return card, nil
	}
	metrics.PublicCardCache.WithLabelValues("miss").Inc()

	o, err := s.store.Repos().Assets.GetOverview(ctx, assetID)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("asset %d", assetID))
	}
	card := &models.PublicAssetCard{
		ID:           o.ID,
		Label:        o.Label,
		CategoryName: o.CategoryName,
		SerialNo:     o.SerialNo,
		Status:       o.Status,
	}
	if o.Status == models.AssetStatusAssigned {
		card.AssigneeName = o.AssigneeName
	}
	s.cards.Set(ctx, card)
	return card, nil
}

func (s *AssetService) ExpiringWarranties(ctx context.Context, within time.Duration) ([]models.AssetOverview, error) {
	from := startOfDay(s.now())
	assets, err := s.store.Repos().Assets.ListWarrantyExpiring(ctx, from, from.Add(within))
	return assets, storageError(err, "list expiring warranties")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysUntil counts whole calendar days from now to the given date; negative
// once the date has passed.
func daysUntil(now, date time.Time) int {
	diff := startOfDay(date).Sub(startOfDay(now)).Hours() / 24
	return int(math.Round(diff))
}

package repositories

import (
	"context"

	"inventory/src/models"
)

type LifecycleEventRepository interface {
	Create(ctx context.Context, e *models.LifecycleEvent) error
	// ListByAssetID returns the asset timeline, newest first.
	ListByAssetID(ctx context.Context, assetID int) ([]models.LifecycleEvent, error)
}

type lifecycleEventRepo struct {
	db DBTX
}

func NewLifecycleEventRepository(db DBTX) LifecycleEventRepository {
	return &lifecycleEventRepo{db: db}
}

func (r *lifecycleEventRepo) Create(ctx context.Context, e *models.LifecycleEvent) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO lifecycle_events (asset_id, event_type, event_at, notes, actor_id, repair_cost)
		 VALUES ($1, $2, $3, $4, $5, $6::text::numeric)
		 RETURNING id`,
		e.AssetID, e.EventType, e.EventAt, e.Notes, e.ActorID, decimalToText(e.RepairCost),
	).Scan(&e.ID)
	return classify(err)
}

func (r *lifecycleEventRepo) ListByAssetID(ctx context.Context, assetID int) ([]models.LifecycleEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, asset_id, event_type, event_at, notes, actor_id, repair_cost::text
		 FROM lifecycle_events WHERE asset_id = $1
		 ORDER BY event_at DESC, id DESC`, assetID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	events := []models.LifecycleEvent{}
	for rows.Next() {
		var e models.LifecycleEvent
		var cost *string
		if err := rows.Scan(&e.ID, &e.AssetID, &e.EventType, &e.EventAt, &e.Notes, &e.ActorID, &cost); err != nil {
			return nil, classify(err)
		}
		if e.RepairCost, err = decimalFromText(cost); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, classify(rows.Err())
}

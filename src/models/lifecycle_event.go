package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeCreated     EventType = "created"
	EventTypeAssigned    EventType = "assigned"
	EventTypeReturned    EventType = "returned"
	EventTypeRepair      EventType = "repair"
	EventTypeRetired     EventType = "retired"
	EventTypeMaintenance EventType = "maintenance"
)

// LifecycleEvent is an append-only timeline entry for an asset.
// RepairCost is only set on maintenance events.
type LifecycleEvent struct {
	ID         int              `db:"id" json:"id"`
	AssetID    int              `db:"asset_id" json:"asset_id"`
	EventType  EventType        `db:"event_type" json:"event_type"`
	EventAt    time.Time        `db:"event_at" json:"event_at"`
	Notes      *string          `db:"notes" json:"notes"`
	ActorID    *string          `db:"actor_id" json:"actor_id"`
	RepairCost *decimal.Decimal `db:"repair_cost" json:"repair_cost"`
}

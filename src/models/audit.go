package models

import (
	"encoding/json"
	"time"
)

type AuditAction string

const (
	AuditAssetCreated         AuditAction = "asset_created"
	AuditAssetUpdated         AuditAction = "asset_updated"
	AuditAssetDeleted         AuditAction = "asset_deleted"
	AuditAssetAssigned        AuditAction = "asset_assigned"
	AuditAssetReturned        AuditAction = "asset_returned"
	AuditAssetSentToRepair    AuditAction = "asset_sent_to_repair"
	AuditAssetRepairExited    AuditAction = "asset_repair_exited"
	AuditAssetRetired         AuditAction = "asset_retired"
	AuditCategoryCreated      AuditAction = "category_created"
	AuditCategoryDeleted      AuditAction = "category_deleted"
	AuditAssigneeRenamed      AuditAction = "assignee_renamed"
	AuditAssigneeDeleted      AuditAction = "assignee_deleted"
	AuditIncidentReported     AuditAction = "incident_reported"
	AuditIncidentStatusChange AuditAction = "incident_status_changed"
	AuditIncidentAssigned     AuditAction = "incident_assigned"
)

const (
	EntityAsset    = "asset"
	EntityCategory = "category"
	EntityAssignee = "assignee"
	EntityIncident = "incident"
)

type AuditEntry struct {
	ID          int             `db:"id" json:"id"`
	Action      AuditAction     `db:"action" json:"action"`
	EntityType  string          `db:"entity_type" json:"entity_type"`
	EntityID    *string         `db:"entity_id" json:"entity_id"`
	ActorID     *string         `db:"actor_id" json:"actor_id"`
	ActorEmail  *string         `db:"actor_email" json:"actor_email"`
	Description *string         `db:"description" json:"description"`
	OldValues   json.RawMessage `db:"old_values" json:"old_values,omitempty"`
	NewValues   json.RawMessage `db:"new_values" json:"new_values,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type AuditFilter struct {
	EntityType string
	EntityID   string
	Action     AuditAction
	Limit      int
	Offset     int
}

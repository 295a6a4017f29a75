package models

import "time"

type IncidentType string

const (
	IncidentDamage      IncidentType = "damage"
	IncidentLoss        IncidentType = "loss"
	IncidentMalfunction IncidentType = "malfunction"
	IncidentTheft       IncidentType = "theft"
	IncidentOther       IncidentType = "other"
)

type IncidentStatus string

const (
	IncidentOpen       IncidentStatus = "open"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentClosed     IncidentStatus = "closed"
)

type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

func (t IncidentType) Valid() bool {
	switch t {
	case IncidentDamage, IncidentLoss, IncidentMalfunction, IncidentTheft, IncidentOther:
		return true
	}
	return false
}

func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentOpen, IncidentInProgress, IncidentResolved, IncidentClosed:
		return true
	}
	return false
}

// Settled reports whether the incident counts as finished work.
func (s IncidentStatus) Settled() bool {
	return s == IncidentResolved || s == IncidentClosed
}

func (s IncidentSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type Incident struct {
	ID              int              `db:"id" json:"id"`
	AssetID         int              `db:"asset_id" json:"asset_id"`
	IncidentType    IncidentType     `db:"incident_type" json:"incident_type"`
	Severity        IncidentSeverity `db:"severity" json:"severity"`
	Status          IncidentStatus   `db:"status" json:"status"`
	Description     string           `db:"description" json:"description"`
	Location        *string          `db:"location" json:"location"`
	ReportedBy      string           `db:"reported_by" json:"reported_by"`
	ReportedByEmail *string          `db:"reported_by_email" json:"reported_by_email"`
	AssignedTo      *string          `db:"assigned_to" json:"assigned_to"`
	AssignedToEmail *string          `db:"assigned_to_email" json:"assigned_to_email"`
	ResolvedAt      *time.Time       `db:"resolved_at" json:"resolved_at"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`

	AssetLabel    string  `db:"asset_label" json:"asset_label"`
	AssetSerialNo *string `db:"asset_serial_no" json:"asset_serial_no"`
	CategoryName  *string `db:"category_name" json:"category_name"`
}

type IncidentFilter struct {
	AssetID  *int
	Status   IncidentStatus
	Severity IncidentSeverity
	Limit    int
	Offset   int
}

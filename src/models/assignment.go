package models

import "time"

// Assignment is one episode of an asset being held by a person.
// ReturnedAt is nil while the assignment is active.
type Assignment struct {
	ID            int        `db:"id" json:"id"`
	AssetID       int        `db:"asset_id" json:"asset_id"`
	AssigneeName  string     `db:"assignee_name" json:"assignee_name"`
	AssigneeEmail *string    `db:"assignee_email" json:"assignee_email"`
	AssignedAt    time.Time  `db:"assigned_at" json:"assigned_at"`
	ReturnedAt    *time.Time `db:"returned_at" json:"returned_at"`
	Notes         *string    `db:"notes" json:"notes"`
}

func (a *Assignment) Active() bool {
	return a.ReturnedAt == nil
}

// Assignee aggregates assignment rows by person. Key is the lowercased
// email when present, otherwise "name:" followed by the lowercased name.
type Assignee struct {
	Key          string    `json:"key"`
	FullName     string    `json:"full_name"`
	Email        *string   `json:"email"`
	ActiveCount  int       `json:"active_count"`
	TotalCount   int       `json:"total_count"`
	LastAssigned time.Time `json:"last_assigned"`
}

type AssigneeFilter struct {
	Search string
	Limit  int
	Offset int
}

// AssigneeMatch selects assignment rows by the denormalised assignee identity.
// Email takes precedence over Name when both are set.
type AssigneeMatch struct {
	Name  string
	Email *string
}

package schemas

import (
	"strings"

	"inventory/src/models"
)

// AssigneeRequest identifies a person by email, or by name when the rows
// carry no email.
type AssigneeRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

func (r AssigneeRequest) ToMatch() models.AssigneeMatch {
	m := models.AssigneeMatch{Name: strings.TrimSpace(r.Name)}
	if r.Email != nil && strings.TrimSpace(*r.Email) != "" {
		email := strings.TrimSpace(*r.Email)
		m.Email = &email
	}
	return m
}

type RenameAssigneeRequest struct {
	From  AssigneeRequest `json:"from"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
}

type AffectedResponse struct {
	Affected int `json:"affected"`
}

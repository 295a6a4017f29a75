package schemas

import (
	"inventory/src/models"
	"inventory/src/services"
)

type ReportIncidentRequest struct {
	Type        models.IncidentType     `json:"type"`
	Severity    models.IncidentSeverity `json:"severity"`
	Description string                  `json:"description"`
	Location    string                  `json:"location"`
}

func (r ReportIncidentRequest) ToReport() services.IncidentReport {
	return services.IncidentReport{
		Type:        r.Type,
		Severity:    r.Severity,
		Description: r.Description,
		Location:    r.Location,
	}
}

type IncidentStatusRequest struct {
	Status models.IncidentStatus `json:"status"`
}

type IncidentAssigneeRequest struct {
	Assignee string `json:"assignee"`
}

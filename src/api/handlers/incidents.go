package handlers

import (
	"net/http"

	"inventory/src/models"
	"inventory/src/schemas"
	"inventory/src/utils"
)

func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	page, size, err := pagination(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	assetID, err := optionalIntQuery(r, "assetId")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	filter := models.IncidentFilter{
		AssetID:  assetID,
		Status:   models.IncidentStatus(r.URL.Query().Get("status")),
		Severity: models.IncidentSeverity(r.URL.Query().Get("severity")),
		Limit:    size,
		Offset:   (page - 1) * size,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		h.HandleErrors(w, r, utils.BadRequest("invalid status"))
		return
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		h.HandleErrors(w, r, utils.BadRequest("invalid severity"))
		return
	}

	incidents, err := h.Incidents.List(ctx, filter)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, incidents, http.StatusOK)
}

func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	incident, err := h.Incidents.Get(ctx, id)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, incident, http.StatusOK)
}

func (h *Handler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	assetID, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.ReportIncidentRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	incident, err := h.Incidents.Report(ctx, actor, assetID, req.ToReport())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, incident, http.StatusCreated)
}

func (h *Handler) UpdateIncidentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.IncidentStatusRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	incident, err := h.Incidents.UpdateStatus(ctx, actor, id, req.Status)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, incident, http.StatusOK)
}

func (h *Handler) AssignIncident(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.IncidentAssigneeRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	incident, err := h.Incidents.Assign(ctx, actor, id, req.Assignee)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, incident, http.StatusOK)
}

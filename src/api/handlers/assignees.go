package handlers

import (
	"net/http"

	"inventory/src/models"
	"inventory/src/schemas"
)

func (h *Handler) ListAssignees(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	page, size, err := pagination(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	filter := models.AssigneeFilter{
		Search: r.URL.Query().Get("q"),
		Limit:  size,
		Offset: (page - 1) * size,
	}
	assignees, total, err := h.Assignees.List(ctx, actor, filter)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, schemas.Page[models.Assignee]{Items: assignees, Total: total, Page: page, PageSize: size}, http.StatusOK)
}

// RenameAssignee rewrites every assignment row of one person, merging into
// an existing identity when the new one is already in use.
func (h *Handler) RenameAssignee(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	var req schemas.RenameAssigneeRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	n, err := h.Assignees.Rename(ctx, actor, req.From.ToMatch(), req.Name, req.Email)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, schemas.AffectedResponse{Affected: n}, http.StatusOK)
}

func (h *Handler) DeleteAssignee(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	var req schemas.AssigneeRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	n, err := h.Assignees.Delete(ctx, actor, req.ToMatch())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, schemas.AffectedResponse{Affected: n}, http.StatusOK)
}

package handlers

import (
	"net/http"

	"inventory/src/schemas"
)

func (h *Handler) AssignAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.AssignRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	result, err := h.Lifecycle.Assign(ctx, actor, id, req.Assignee, req.Notes)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) ReturnAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.NotesRequest
	if err := decode(r, &req, true); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	result, err := h.Lifecycle.Return(ctx, actor, id, req.Notes)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) SendAssetToRepair(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.NotesRequest
	if err := decode(r, &req, true); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	result, err := h.Lifecycle.SendToRepair(ctx, actor, id, req.Notes)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) ExitAssetRepair(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.ExitRepairRequest
	if err := decode(r, &req, true); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	result, err := h.Lifecycle.ExitRepair(ctx, actor, id, req.Notes, string(req.Cost))
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) RetireAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.NotesRequest
	if err := decode(r, &req, true); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	result, err := h.Lifecycle.Retire(ctx, actor, id, req.Notes)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

package handlers

import (
	"net/http"

	"inventory/src/schemas"
)

func (h *Handler) GetAllCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	categories, err := h.Categories.List(ctx)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, categories, http.StatusOK)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	var req schemas.CategoryRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	category, err := h.Categories.Create(ctx, actor, req.Name)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, category, http.StatusCreated)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	if err := h.Categories.Delete(ctx, actor, id); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, schemas.DeletedResponse{OK: true}, http.StatusOK)
}

package handlers

import (
	"net/http"
	"strconv"

	"inventory/src/models"
	"inventory/src/schemas"
	"inventory/src/utils"
)

func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	page, size, err := pagination(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	categoryID, err := optionalIntQuery(r, "category")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	filter := models.AssetFilter{
		Search:     r.URL.Query().Get("q"),
		CategoryID: categoryID,
		Limit:      size,
		Offset:     (page - 1) * size,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.AssetStatus(raw)
		if !status.Valid() {
			h.HandleErrors(w, r, utils.BadRequest("invalid status"))
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("includeRetired"); raw != "" {
		if filter.IncludeRetired, err = strconv.ParseBool(raw); err != nil {
			h.HandleErrors(w, r, utils.BadRequest("invalid includeRetired"))
			return
		}
	}

	assets, total, err := h.Assets.List(ctx, filter)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, schemas.Page[models.AssetOverview]{Items: assets, Total: total, Page: page, PageSize: size}, http.StatusOK)
}

func (h *Handler) GetAssetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	stats, err := h.Assets.Stats(ctx)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, stats, http.StatusOK)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	var req schemas.AssetRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	asset, err := h.Assets.Create(ctx, actor, req.ToFields())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, asset, http.StatusCreated)
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	detail, err := h.Assets.Get(ctx, id)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, detail, http.StatusOK)
}

func (h *Handler) EditAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	var req schemas.AssetRequest
	if err := decode(r, &req, false); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	asset, err := h.Assets.Edit(ctx, actor, id, req.ToFields())
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, asset, http.StatusOK)
}

func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	if err := h.Assets.Delete(ctx, actor, id); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, schemas.DeletedResponse{OK: true}, http.StatusOK)
}

func (h *Handler) GetAssetAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	assignments, err := h.Assets.Assignments(ctx, id)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, assignments, http.StatusOK)
}

// GetPublicAsset serves the card behind an asset's QR code. No auth.
func (h *Handler) GetPublicAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.requestContext(r)
	defer cancel()

	id, err := idParam(r, "id")
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	card, err := h.Assets.PublicCard(ctx, id)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, card, http.StatusOK)
}

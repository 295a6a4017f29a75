package handlers

import (
	"net/http"

	"inventory/src/models"
)

func (h *Handler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.requestContext(r)
	defer cancel()

	limit, err := intQuery(r, "limit", defaultPageSize)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	q := r.URL.Query()
	entries, err := h.Audit.List(ctx, actor, models.AuditFilter{
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		Action:     models.AuditAction(q.Get("action")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, entries, http.StatusOK)
}

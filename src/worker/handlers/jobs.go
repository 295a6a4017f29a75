package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Controller.Jobs(), http.StatusOK)
}

// RunJob triggers a job by name and answers with its summary.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), triggerTimeout)
	defer cancel()

	summary, err := h.Controller.RunJob(ctx, chi.URLParam(r, "name"))
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.respond(w, r, summary, http.StatusOK)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"inventory/src/utils"
	"inventory/src/worker/controllers"
)

const triggerTimeout = 2 * time.Minute

type Handler struct {
	Controller *controllers.Controller
}

func NewHandler(controller *controllers.Controller) *Handler {
	return &Handler{Controller: controller}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		h.respond(w, r, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	} else if httpErr, ok := utils.AsHTTPError(err); ok {
		h.respond(w, r, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if errors.Is(err, controllers.ErrUnknownJob) {
		h.respond(w, r, map[string]string{"error": err.Error()}, http.StatusNotFound)
	} else if err != nil {
		h.respond(w, r, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	} else {
		h.respond(w, r, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"inventory/src/api/middleware"
	"inventory/src/cache"
	"inventory/src/config"
	"inventory/src/models"
	"inventory/src/repositories"
	"inventory/src/services"
	"inventory/src/utils"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxPage         = 1_000_000
)

type Handler struct {
	Assets     services.AssetServiceI
	Lifecycle  services.LifecycleServiceI
	Categories services.CategoryServiceI
	Assignees  services.AssigneeServiceI
	Incidents  services.IncidentServiceI
	Audit      services.AuditServiceI

	timeout time.Duration
}

func NewHandler(cfg *config.Config, store repositories.Store, cards cache.AssetCardCache) *Handler {
	categories := services.NewCategoryService(store)
	timeout := cfg.Service.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		Assets:     services.NewAssetService(store, categories, cards, cfg.Service.PublicBaseURL, nil),
		Lifecycle:  services.NewLifecycleService(store, cards, nil),
		Categories: categories,
		Assignees:  services.NewAssigneeService(store),
		Incidents:  services.NewIncidentService(store, nil),
		Audit:      services.NewAuditService(store),
		timeout:    timeout,
	}
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc, models.Actor) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	return ctx, cancel, middleware.ActorFromContext(r.Context())
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

// HandleErrors maps service errors onto HTTP status codes.
func (h *Handler) HandleErrors(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	httpErr, isHTTPErr := utils.AsHTTPError(err)
	switch {
	case err == nil:
		message = "Unhandled error"
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "Request timed out"
	case isHTTPErr:
		status, message = httpErr.Code, httpErr.Message
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyAssigned),
		errors.Is(err, services.ErrNoActiveAssignment),
		errors.Is(err, services.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrInvalidCost),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidLabel),
		errors.Is(err, services.ErrInvalidInput):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrConcurrencyConflict):
		status, message = http.StatusServiceUnavailable, err.Error()
	}

	if status >= http.StatusInternalServerError {
		utils.LoggerFromContext(r.Context()).WithError(err).WithField("status", status).Error("request failed")
	}
	h.respond(w, r, map[string]string{"error": message}, status)
}

// decode reads a JSON body into dst. An empty body is accepted when optional
// is set.
func decode(r *http.Request, dst interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return utils.BadRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func idParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, utils.BadRequest(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, utils.BadRequest(fmt.Sprintf("invalid %s", name))
	}
	return n, nil
}

func optionalIntQuery(r *http.Request, name string) (*int, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	n, err := intQuery(r, name, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// pagination reads page (1-based) and pageSize. Pages past maxPage are
// refused so the row offset cannot overflow.
func pagination(r *http.Request) (page, size int, err error) {
	if page, err = intQuery(r, "page", 1); err != nil {
		return 0, 0, err
	}
	if size, err = intQuery(r, "pageSize", defaultPageSize); err != nil {
		return 0, 0, err
	}
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return 0, 0, utils.BadRequest(fmt.Sprintf("page must not exceed %d", maxPage))
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, nil
}

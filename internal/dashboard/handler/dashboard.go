package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tokotrack/tokotrack-backend/internal/dashboard/client"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/service"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// DashboardHandler serves the aggregated dashboard and the user directory
type DashboardHandler struct {
	aggregator *service.AggregatorService
	directory  *service.DirectoryService
	api        *client.APIClient
	logger     *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(aggregator *service.AggregatorService, directory *service.DirectoryService, api *client.APIClient, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		aggregator: aggregator,
		directory:  directory,
		api:        api,
		logger:     log,
	}
}

// GetStats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.aggregator.GetStats(r.Context())
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// GetLandingStats handles GET /api/v1/landing/stats by proxying the API
// server's public counters
func (h *DashboardHandler) GetLandingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.api.GetLandingStats(r.Context())
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /api/v1/dashboard/users with optional search and
// role query parameters, served from the cached directory snapshot
func (h *DashboardHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	role := r.URL.Query().Get("role")

	users := h.directory.List(search, role)

	httputil.JSON(w, http.StatusOK, users)
}

// CreateUser handles POST /api/v1/dashboard/users
func (h *DashboardHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req client.CreateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	user, err := h.directory.Create(r.Context(), &req)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.Created(w, user)
}

// UpdateUser handles PUT /api/v1/dashboard/users/{id}
func (h *DashboardHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req client.UpdateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	user, err := h.directory.Update(r.Context(), id, &req)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/dashboard/users/{id}. The request must
// carry confirm=true; without it no upstream call is made.
func (h *DashboardHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		httputil.ErrorLocalized(w, r, errors.ConfirmationRequired())
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.directory.Delete(r.Context(), id); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.NoContent(w)
}

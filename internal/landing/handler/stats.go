package handler

import (
	"net/http"

	"github.com/tokotrack/tokotrack-backend/internal/landing/service"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// StatsHandler serves the public landing page statistics
type StatsHandler struct {
	service *service.StatsService
	logger  *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(svc *service.StatsService, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		service: svc,
		logger:  log,
	}
}

// Get returns the landing page statistics. This endpoint is public.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Get(r.Context())
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

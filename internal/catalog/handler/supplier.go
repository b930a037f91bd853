package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tokotrack/tokotrack-backend/internal/catalog/service"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	service *service.CatalogService
	logger  *logger.Logger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(svc *service.CatalogService, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{
		service: svc,
		logger:  log,
	}
}

// List lists all suppliers
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := paginationParams(r)

	suppliers, total, err := h.service.ListSuppliers(r.Context(), page, perPage)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, suppliers, listMeta(page, perPage, total))
}

// Get gets a supplier by ID
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// Create creates a new supplier
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	supplier, err := h.service.CreateSupplier(r.Context(), &req)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.Created(w, supplier)
}

// Update updates a supplier
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.UpdateSupplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	supplier, err := h.service.UpdateSupplier(r.Context(), id, &req)
	if err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, supplier)
}

// Delete deletes a supplier
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteSupplier(r.Context(), id); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	httputil.NoContent(w)
}

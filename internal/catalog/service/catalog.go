package service

import (
	"context"

	"github.com/tokotrack/tokotrack-backend/internal/catalog/events"
	"github.com/tokotrack/tokotrack-backend/internal/catalog/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// CatalogService handles product and supplier business logic
type CatalogService struct {
	productRepo  *repository.ProductRepository
	supplierRepo *repository.SupplierRepository
	publisher    *events.CatalogEventPublisher
	logger       *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	productRepo *repository.ProductRepository,
	supplierRepo *repository.SupplierRepository,
	publisher *events.CatalogEventPublisher,
	log *logger.Logger,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// CreateProductRequest represents a create product request
type CreateProductRequest struct {
	SKU         string  `json:"sku" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	SupplierID  *string `json:"supplier_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest represents an update product request
type UpdateProductRequest struct {
	SKU         *string  `json:"sku"`
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	SupplierID  *string  `json:"supplier_id" validate:"omitempty,uuid"`
}

// AdjustStockRequest represents a stock adjustment request
type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason"`
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*repository.Product, error) {
	if req.SupplierID != nil {
		if _, err := s.supplierRepo.GetByID(ctx, *req.SupplierID); err != nil {
			return nil, errors.BadRequest("supplier does not exist")
		}
	}

	product := &repository.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		SupplierID:  req.SupplierID,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishProductCreated(ctx, product)
		if product.IsLowStock() {
			s.publisher.PublishStockLow(ctx, product)
		}
	}

	return product, nil
}

// GetProduct gets a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*repository.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// ListProducts lists products with pagination
func (s *CatalogService) ListProducts(ctx context.Context, page, perPage int) ([]*repository.Product, int64, error) {
	return s.productRepo.List(ctx, page, perPage)
}

// UpdateProduct updates a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*repository.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})

	if req.SKU != nil && *req.SKU != product.SKU {
		changes["sku"] = map[string]string{"from": product.SKU, "to": *req.SKU}
		product.SKU = *req.SKU
	}
	if req.Name != nil && *req.Name != product.Name {
		changes["name"] = map[string]string{"from": product.Name, "to": *req.Name}
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil && *req.Price != product.Price {
		changes["price"] = map[string]float64{"from": product.Price, "to": *req.Price}
		product.Price = *req.Price
	}
	if req.SupplierID != nil {
		if _, err := s.supplierRepo.GetByID(ctx, *req.SupplierID); err != nil {
			return nil, errors.BadRequest("supplier does not exist")
		}
		product.SupplierID = req.SupplierID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if s.publisher != nil && len(changes) > 0 {
		s.publisher.PublishProductUpdated(ctx, product, changes)
	}

	return product, nil
}

// AdjustStock applies a delta to a product's stock level
func (s *CatalogService) AdjustStock(ctx context.Context, id string, req *AdjustStockRequest) (*repository.Product, error) {
	newQuantity, err := s.productRepo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Quantity = newQuantity

	if s.publisher != nil {
		performedBy := httputil.GetUserID(ctx)
		s.publisher.PublishStockAdjusted(ctx, product, req.Delta, performedBy, req.Reason)
		if product.IsLowStock() {
			s.publisher.PublishStockLow(ctx, product)
		}
	}

	return product, nil
}

// DeleteProduct soft deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishProductDeleted(ctx, id, product.SKU)
	}

	return nil
}

// CreateSupplierRequest represents a create supplier request
type CreateSupplierRequest struct {
	Name        string  `json:"name" validate:"required"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

// UpdateSupplierRequest represents an update supplier request
type UpdateSupplierRequest struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

// CreateSupplier creates a new supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*repository.Supplier, error) {
	supplier := &repository.Supplier{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishSupplierCreated(ctx, supplier)
	}

	return supplier, nil
}

// GetSupplier gets a supplier by ID
func (s *CatalogService) GetSupplier(ctx context.Context, id string) (*repository.Supplier, error) {
	return s.supplierRepo.GetByID(ctx, id)
}

// ListSuppliers lists suppliers with pagination
func (s *CatalogService) ListSuppliers(ctx context.Context, page, perPage int) ([]*repository.Supplier, int64, error) {
	return s.supplierRepo.List(ctx, page, perPage)
}

// UpdateSupplier updates a supplier
func (s *CatalogService) UpdateSupplier(ctx context.Context, id string, req *UpdateSupplierRequest) (*repository.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})

	if req.Name != nil && *req.Name != supplier.Name {
		changes["name"] = map[string]string{"from": supplier.Name, "to": *req.Name}
		supplier.Name = *req.Name
	}
	if req.ContactName != nil {
		supplier.ContactName = req.ContactName
	}
	if req.Email != nil {
		supplier.Email = req.Email
	}
	if req.Phone != nil {
		supplier.Phone = req.Phone
	}
	if req.Address != nil {
		supplier.Address = req.Address
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}

	if s.publisher != nil && len(changes) > 0 {
		s.publisher.PublishSupplierUpdated(ctx, supplier, changes)
	}

	return supplier, nil
}

// DeleteSupplier soft deletes a supplier
func (s *CatalogService) DeleteSupplier(ctx context.Context, id string) error {
	if _, err := s.supplierRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.supplierRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishSupplierDeleted(ctx, id)
	}

	return nil
}

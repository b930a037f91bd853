package service

import (
	"context"
	"fmt"

	"github.com/tokotrack/tokotrack-backend/internal/order/events"
	"github.com/tokotrack/tokotrack-backend/internal/order/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
)

// OrderService handles order business logic
type OrderService struct {
	orderRepo *repository.OrderRepository
	publisher *events.OrderEventPublisher
	logger    *logger.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo *repository.OrderRepository,
	publisher *events.OrderEventPublisher,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrderRequest represents a create order request
type CreateOrderRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	Total        float64 `json:"total" validate:"gte=0"`
}

// UpdateStatusRequest represents a status change request
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Processing Completed Cancelled"`
}

// Create creates a new order in Pending status
func (s *OrderService) Create(ctx context.Context, req *CreateOrderRequest) (*repository.Order, error) {
	order := &repository.Order{
		CustomerName: req.CustomerName,
		Total:        req.Total,
		Status:       repository.StatusPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishOrderCreated(ctx, order)
	}

	return order, nil
}

// GetByID gets an order by ID
func (s *OrderService) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// List lists orders with pagination
func (s *OrderService) List(ctx context.Context, page, perPage int) ([]*repository.Order, int64, error) {
	return s.orderRepo.List(ctx, page, perPage)
}

// Recent returns the most recent orders by order date
func (s *OrderService) Recent(ctx context.Context, limit int) ([]*repository.Order, error) {
	return s.orderRepo.Recent(ctx, limit)
}

// UpdateStatus moves an order to a new status, enforcing the allowed
// transitions
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req *UpdateStatusRequest) (*repository.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == req.Status {
		return order, nil
	}

	if !repository.CanTransition(order.Status, req.Status) {
		return nil, errors.BadRequest(
			fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status))
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.Status = req.Status

	if s.publisher != nil {
		changedBy := httputil.GetUserID(ctx)
		s.publisher.PublishOrderStatusChanged(ctx, id, oldStatus, req.Status, changedBy)
	}

	return order, nil
}

// Delete soft deletes an order
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.orderRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishOrderDeleted(ctx, id)
	}

	return nil
}

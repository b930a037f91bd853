package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tokotrack/tokotrack-backend/pkg/database"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
)

// Order statuses. An order starts Pending, moves through Processing to
// Completed, and may be Cancelled while still Pending or Processing.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Order represents a customer order
type Order struct {
	ID           string     `db:"id" json:"id"`
	CustomerName string     `db:"customer_name" json:"customer_name"`
	Status       string     `db:"status" json:"status"`
	Total        float64    `db:"total" json:"total"`
	OrderDate    time.Time  `db:"order_date" json:"order_date"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}

// ValidStatus reports whether the given status is one the system knows
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusCancelled
	case StatusProcessing:
		return to == StatusCompleted || to == StatusCancelled
	}
	// Completed and Cancelled are terminal
	return false
}

// OrderRepository handles order persistence
type OrderRepository struct {
	db *database.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create creates a new order
func (r *OrderRepository) Create(ctx context.Context, order *Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = StatusPending
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}

	query := `
		INSERT INTO orders (id, customer_name, status, total, order_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		order.ID,
		order.CustomerName,
		order.Status,
		order.Total,
		order.OrderDate,
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets an order by ID
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `
		SELECT id, customer_name, status, total, order_date,
		       created_at, updated_at, deleted_at
		FROM orders
		WHERE id = $1 AND deleted_at IS NULL
	`

	var order Order
	err := r.db.GetContext(ctx, &order, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("order")
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// List lists all orders with pagination, newest order date first
func (r *OrderRepository) List(ctx context.Context, page, perPage int) ([]*Order, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, customer_name, status, total, order_date,
		       created_at, updated_at, deleted_at
		FROM orders
		WHERE deleted_at IS NULL
		ORDER BY order_date DESC
		LIMIT $1 OFFSET $2
	`

	orders := make([]*Order, 0)
	if err := r.db.SelectContext(ctx, &orders, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Recent returns the most recent orders by order date
func (r *OrderRepository) Recent(ctx context.Context, limit int) ([]*Order, error) {
	query := `
		SELECT id, customer_name, status, total, order_date,
		       created_at, updated_at, deleted_at
		FROM orders
		WHERE deleted_at IS NULL
		ORDER BY order_date DESC
		LIMIT $1
	`

	orders := make([]*Order, 0)
	if err := r.db.SelectContext(ctx, &orders, query, limit); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus updates an order's status
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("order")
	}

	return nil
}

// SoftDelete soft deletes an order
func (r *OrderRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE orders SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("order")
	}

	return nil
}

// Count returns the number of active orders
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders WHERE deleted_at IS NULL`)
	return count, err
}

// CountByStatus returns the number of orders with the given status
func (r *OrderRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM orders WHERE status = $1 AND deleted_at IS NULL`, status)
	return count, err
}

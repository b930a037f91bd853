package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tokotrack/tokotrack-backend/pkg/database"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
)

// Supplier represents a supplier the shop buys stock from
type Supplier struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	ContactName *string    `db:"contact_name" json:"contact_name,omitempty"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

// SupplierRepository handles supplier persistence
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create creates a new supplier
func (r *SupplierRepository) Create(ctx context.Context, supplier *Supplier) error {
	if supplier.ID == "" {
		supplier.ID = uuid.New().String()
	}

	query := `
		INSERT INTO suppliers (id, name, contact_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		supplier.ID,
		supplier.Name,
		supplier.ContactName,
		supplier.Email,
		supplier.Phone,
		supplier.Address,
	).Scan(&supplier.CreatedAt, &supplier.UpdatedAt)

	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*Supplier, error) {
	query := `
		SELECT id, name, contact_name, email, phone, address,
		       created_at, updated_at, deleted_at
		FROM suppliers
		WHERE id = $1 AND deleted_at IS NULL
	`

	var supplier Supplier
	err := r.db.GetContext(ctx, &supplier, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supplier")
	}
	if err != nil {
		return nil, err
	}

	return &supplier, nil
}

// List lists all suppliers with pagination
func (r *SupplierRepository) List(ctx context.Context, page, perPage int) ([]*Supplier, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM suppliers WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, name, contact_name, email, phone, address,
		       created_at, updated_at, deleted_at
		FROM suppliers
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	suppliers := make([]*Supplier, 0)
	if err := r.db.SelectContext(ctx, &suppliers, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}

// Update updates a supplier
func (r *SupplierRepository) Update(ctx context.Context, supplier *Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $2, contact_name = $3, email = $4, phone = $5, address = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		supplier.ID,
		supplier.Name,
		supplier.ContactName,
		supplier.Email,
		supplier.Phone,
		supplier.Address,
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}

	return nil
}

// SoftDelete soft deletes a supplier
func (r *SupplierRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE suppliers SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("supplier")
	}

	return nil
}

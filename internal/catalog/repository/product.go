package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tokotrack/tokotrack-backend/pkg/database"
	"github.com/tokotrack/tokotrack-backend/pkg/errors"
)

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

// Product represents a product in the shop's catalog
type Product struct {
	ID          string     `db:"id" json:"id"`
	SKU         string     `db:"sku" json:"sku"`
	Name        string     `db:"name" json:"name"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	Price       float64    `db:"price" json:"price"`
	Quantity    int        `db:"quantity" json:"quantity"`
	SupplierID  *string    `db:"supplier_id" json:"supplier_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

// IsLowStock reports whether the product is below the low stock threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity < LowStockThreshold
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	query := `
		INSERT INTO products (id, sku, name, category, description, price, quantity, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		product.ID,
		product.SKU,
		product.Name,
		product.Category,
		product.Description,
		product.Price,
		product.Quantity,
		product.SupplierID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := `
		SELECT id, sku, name, category, description, price, quantity, supplier_id,
		       created_at, updated_at, deleted_at
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`

	var product Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// List lists all products with pagination
func (r *ProductRepository) List(ctx context.Context, page, perPage int) ([]*Product, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, sku, name, category, description, price, quantity, supplier_id,
		       created_at, updated_at, deleted_at
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	products := make([]*Product, 0)
	if err := r.db.SelectContext(ctx, &products, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update updates a product
func (r *ProductRepository) Update(ctx context.Context, product *Product) error {
	query := `
		UPDATE products
		SET sku = $2, name = $3, category = $4, description = $5, price = $6,
		    quantity = $7, supplier_id = $8, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.SKU,
		product.Name,
		product.Category,
		product.Description,
		product.Price,
		product.Quantity,
		product.SupplierID,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}

// AdjustStock applies a delta to a product's quantity and returns the new
// quantity. The quantity CHECK constraint rejects adjustments that would go
// negative.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	query := `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING quantity
	`

	var newQuantity int
	err := r.db.QueryRowxContext(ctx, query, id, delta).Scan(&newQuantity)
	if err == sql.ErrNoRows {
		return 0, errors.NotFound("product")
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return 0, appErr
		}
		return 0, err
	}

	return newQuantity, nil
}

// SoftDelete soft deletes a product
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE products SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}

// Count returns the number of active products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`)
	return count, err
}

// CountLowStock returns the number of products below the low stock threshold
func (r *ProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM products WHERE quantity < $1 AND deleted_at IS NULL`,
		LowStockThreshold,
	)
	return count, err
}

package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserFixture represents test user data
type UserFixture struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductFixture represents test product data
type ProductFixture struct {
	ID         string
	SKU        string
	Name       string
	Category   string
	Price      float64
	Quantity   int
	SupplierID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SupplierFixture represents test supplier data
type SupplierFixture struct {
	ID          string
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderFixture represents test order data
type OrderFixture struct {
	ID           string
	CustomerName string
	Status       string
	Total        float64
	OrderDate    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// User creates a user fixture with defaults
func (f *FixtureFactory) User(opts ...func(*UserFixture)) UserFixture {
	seq := f.nextSeq()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	user := UserFixture{
		ID:           uuid.New().String(),
		Name:         fmt.Sprintf("Test User %d", seq),
		Email:        fmt.Sprintf("user%d@test.tokotrack.id", seq),
		Role:         "employee",
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	for _, opt := range opts {
		opt(&user)
	}

	return user
}

// WithEmail sets the user email
func WithEmail(email string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Email = email
	}
}

// WithRole sets the user role
func WithRole(role string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Role = role
	}
}

// WithName sets the user name
func WithName(name string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Name = name
	}
}

// Product creates a product fixture with defaults
func (f *FixtureFactory) Product(opts ...func(*ProductFixture)) ProductFixture {
	seq := f.nextSeq()

	product := ProductFixture{
		ID:        uuid.New().String(),
		SKU:       fmt.Sprintf("SKU-%04d", seq),
		Name:      fmt.Sprintf("Product %d", seq),
		Category:  "general",
		Price:     15000,
		Quantity:  50,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&product)
	}

	return product
}

// WithQuantity sets the product quantity
func WithQuantity(qty int) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.Quantity = qty
	}
}

// WithSKU sets the product SKU
func WithSKU(sku string) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.SKU = sku
	}
}

// Supplier creates a supplier fixture with defaults
func (f *FixtureFactory) Supplier(opts ...func(*SupplierFixture)) SupplierFixture {
	seq := f.nextSeq()

	supplier := SupplierFixture{
		ID:          uuid.New().String(),
		Name:        fmt.Sprintf("Supplier %d", seq),
		ContactName: fmt.Sprintf("Contact %d", seq),
		Email:       fmt.Sprintf("supplier%d@test.tokotrack.id", seq),
		Phone:       "+62-812-0000-0000",
		Address:     "Jl. Sudirman No. 1, Jakarta",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(&supplier)
	}

	return supplier
}

// Order creates an order fixture with defaults
func (f *FixtureFactory) Order(opts ...func(*OrderFixture)) OrderFixture {
	seq := f.nextSeq()

	order := OrderFixture{
		ID:           uuid.New().String(),
		CustomerName: fmt.Sprintf("Customer %d", seq),
		Status:       "Pending",
		Total:        100000,
		OrderDate:    time.Now(),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	for _, opt := range opts {
		opt(&order)
	}

	return order
}

// WithStatus sets the order status
func WithStatus(status string) func(*OrderFixture) {
	return func(o *OrderFixture) {
		o.Status = status
	}
}

// WithOrderDate sets the order date
func WithOrderDate(t time.Time) func(*OrderFixture) {
	return func(o *OrderFixture) {
		o.OrderDate = t
	}
}

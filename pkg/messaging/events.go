package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// User events
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"

	// Catalog events
	EventProductCreated  = "catalog.product.created"
	EventProductUpdated  = "catalog.product.updated"
	EventProductDeleted  = "catalog.product.deleted"
	EventStockAdjusted   = "catalog.stock.adjusted"
	EventStockLow        = "catalog.stock.low"
	EventSupplierCreated = "catalog.supplier.created"
	EventSupplierUpdated = "catalog.supplier.updated"
	EventSupplierDeleted = "catalog.supplier.deleted"

	// Order events
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status.changed"
	EventOrderDeleted       = "order.deleted"
)

// Exchange names
const (
	ExchangeUserEvents    = "user.events"
	ExchangeCatalogEvents = "catalog.events"
	ExchangeOrderEvents   = "order.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// User Events

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// UserUpdatedEvent is published when a user is updated
type UserUpdatedEvent struct {
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"` // Changed fields
}

// UserDeletedEvent is published when a user is deleted
type UserDeletedEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Catalog Events

// ProductCreatedEvent is published when a product is created
type ProductCreatedEvent struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// ProductUpdatedEvent is published when a product is updated
type ProductUpdatedEvent struct {
	ProductID string         `json:"product_id"`
	Fields    map[string]any `json:"fields"`
}

// ProductDeletedEvent is published when a product is deleted
type ProductDeletedEvent struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
}

// StockAdjustedEvent is published when a product's stock level changes
type StockAdjustedEvent struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	Adjustment  int    `json:"adjustment"`
	NewQuantity int    `json:"new_quantity"`
	PerformedBy string `json:"performed_by"`
	Reason      string `json:"reason,omitempty"`
}

// StockLowEvent is published when a product's quantity drops below the
// low stock threshold
type StockLowEvent struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// SupplierCreatedEvent is published when a supplier is created
type SupplierCreatedEvent struct {
	SupplierID string `json:"supplier_id"`
	Name       string `json:"name"`
}

// SupplierUpdatedEvent is published when a supplier is updated
type SupplierUpdatedEvent struct {
	SupplierID string         `json:"supplier_id"`
	Fields     map[string]any `json:"fields"`
}

// SupplierDeletedEvent is published when a supplier is deleted
type SupplierDeletedEvent struct {
	SupplierID string `json:"supplier_id"`
}

// Order Events

// OrderCreatedEvent is published when an order is created
type OrderCreatedEvent struct {
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Total        float64   `json:"total"`
	Status       string    `json:"status"`
	OrderDate    time.Time `json:"order_date"`
}

// OrderStatusChangedEvent is published when an order's status changes
type OrderStatusChangedEvent struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedBy string `json:"changed_by"`
}

// OrderDeletedEvent is published when an order is deleted
type OrderDeletedEvent struct {
	OrderID string `json:"order_id"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}

package events

import (
	"context"

	"github.com/tokotrack/tokotrack-backend/internal/catalog/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/messaging"
)

// eventSink abstracts the underlying publisher so tests can capture events
type eventSink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// CatalogEventPublisher publishes catalog-related events
type CatalogEventPublisher struct {
	publisher eventSink
	logger    *logger.Logger
}

// NewCatalogEventPublisher creates a new catalog event publisher
func NewCatalogEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*CatalogEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeCatalogEvents, "api-server", log)
	if err != nil {
		return nil, err
	}

	return &CatalogEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// NewCatalogEventPublisherWithSink creates a publisher backed by any sink.
// Used in tests with a mock sink.
func NewCatalogEventPublisherWithSink(sink eventSink, log *logger.Logger) *CatalogEventPublisher {
	return &CatalogEventPublisher{
		publisher: sink,
		logger:    log,
	}
}

// PublishProductCreated publishes a product created event
func (p *CatalogEventPublisher) PublishProductCreated(ctx context.Context, product *repository.Product) {
	data := messaging.ProductCreatedEvent{
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Quantity:  product.Quantity,
	}

	if err := p.publisher.Publish(ctx, messaging.EventProductCreated, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to publish product created event")
	}
}

// PublishProductUpdated publishes a product updated event
func (p *CatalogEventPublisher) PublishProductUpdated(ctx context.Context, product *repository.Product, changes map[string]interface{}) {
	data := messaging.ProductUpdatedEvent{
		ProductID: product.ID,
		Fields:    changes,
	}

	if err := p.publisher.Publish(ctx, messaging.EventProductUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to publish product updated event")
	}
}

// PublishProductDeleted publishes a product deleted event
func (p *CatalogEventPublisher) PublishProductDeleted(ctx context.Context, productID, sku string) {
	data := messaging.ProductDeletedEvent{
		ProductID: productID,
		SKU:       sku,
	}

	if err := p.publisher.Publish(ctx, messaging.EventProductDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", productID).Msg("failed to publish product deleted event")
	}
}

// PublishStockAdjusted publishes a stock adjusted event
func (p *CatalogEventPublisher) PublishStockAdjusted(ctx context.Context, product *repository.Product, delta int, performedBy, reason string) {
	data := messaging.StockAdjustedEvent{
		ProductID:   product.ID,
		SKU:         product.SKU,
		Adjustment:  delta,
		NewQuantity: product.Quantity,
		PerformedBy: performedBy,
		Reason:      reason,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockAdjusted, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to publish stock adjusted event")
	}
}

// PublishStockLow publishes a low stock warning event
func (p *CatalogEventPublisher) PublishStockLow(ctx context.Context, product *repository.Product) {
	data := messaging.StockLowEvent{
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Quantity:  product.Quantity,
		Threshold: repository.LowStockThreshold,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockLow, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to publish stock low event")
	}
}

// PublishSupplierCreated publishes a supplier created event
func (p *CatalogEventPublisher) PublishSupplierCreated(ctx context.Context, supplier *repository.Supplier) {
	data := messaging.SupplierCreatedEvent{
		SupplierID: supplier.ID,
		Name:       supplier.Name,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSupplierCreated, data); err != nil {
		p.logger.Error().Err(err).Str("supplier_id", supplier.ID).Msg("failed to publish supplier created event")
	}
}

// PublishSupplierUpdated publishes a supplier updated event
func (p *CatalogEventPublisher) PublishSupplierUpdated(ctx context.Context, supplier *repository.Supplier, changes map[string]interface{}) {
	data := messaging.SupplierUpdatedEvent{
		SupplierID: supplier.ID,
		Fields:     changes,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSupplierUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("supplier_id", supplier.ID).Msg("failed to publish supplier updated event")
	}
}

// PublishSupplierDeleted publishes a supplier deleted event
func (p *CatalogEventPublisher) PublishSupplierDeleted(ctx context.Context, supplierID string) {
	data := messaging.SupplierDeletedEvent{
		SupplierID: supplierID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSupplierDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("supplier_id", supplierID).Msg("failed to publish supplier deleted event")
	}
}

package events

import (
	"context"

	"github.com/tokotrack/tokotrack-backend/internal/order/repository"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/messaging"
)

// eventSink abstracts the underlying publisher so tests can capture events
type eventSink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// OrderEventPublisher publishes order-related events
type OrderEventPublisher struct {
	publisher eventSink
	logger    *logger.Logger
}

// NewOrderEventPublisher creates a new order event publisher
func NewOrderEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*OrderEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeOrderEvents, "api-server", log)
	if err != nil {
		return nil, err
	}

	return &OrderEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// NewOrderEventPublisherWithSink creates a publisher backed by any sink.
// Used in tests with a mock sink.
func NewOrderEventPublisherWithSink(sink eventSink, log *logger.Logger) *OrderEventPublisher {
	return &OrderEventPublisher{
		publisher: sink,
		logger:    log,
	}
}

// PublishOrderCreated publishes an order created event
func (p *OrderEventPublisher) PublishOrderCreated(ctx context.Context, order *repository.Order) {
	data := messaging.OrderCreatedEvent{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Total:        order.Total,
		Status:       order.Status,
		OrderDate:    order.OrderDate,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderCreated, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order created event")
	}
}

// PublishOrderStatusChanged publishes an order status changed event
func (p *OrderEventPublisher) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus, changedBy string) {
	data := messaging.OrderStatusChangedEvent{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderStatusChanged, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to publish order status changed event")
	}
}

// PublishOrderDeleted publishes an order deleted event
func (p *OrderEventPublisher) PublishOrderDeleted(ctx context.Context, orderID string) {
	data := messaging.OrderDeletedEvent{
		OrderID: orderID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to publish order deleted event")
	}
}

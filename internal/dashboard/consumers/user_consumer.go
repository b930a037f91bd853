package consumers

import (
	"context"
	"fmt"

	"github.com/tokotrack/tokotrack-backend/internal/dashboard/service"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/messaging"
)

// UserEventConsumer refreshes the user directory whenever the API server
// publishes a user event, so the cached snapshot never stays stale for a
// full polling interval after a change.
type UserEventConsumer struct {
	consumer  *messaging.Consumer
	directory *service.DirectoryService
	logger    *logger.Logger
}

// NewUserEventConsumer creates a consumer bound to all user events
func NewUserEventConsumer(rmq *messaging.RabbitMQ, directory *service.DirectoryService, log *logger.Logger) (*UserEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "dashboard-service.users", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create user event consumer: %w", err)
	}

	if err := consumer.Subscribe(messaging.ExchangeUserEvents, "user.#"); err != nil {
		return nil, fmt.Errorf("failed to subscribe to user events: %w", err)
	}

	c := &UserEventConsumer{
		consumer:  consumer,
		directory: directory,
		logger:    log,
	}

	consumer.RegisterWildcardHandler(c.handleUserEvent)

	return c, nil
}

// Start begins consuming user events
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *UserEventConsumer) handleUserEvent(ctx context.Context, event *messaging.Event) error {
	c.logger.Debug().
		Str("event_type", event.Type).
		Str("event_id", event.ID).
		Msg("user event received, refreshing directory")

	return c.directory.Refresh(ctx)
}

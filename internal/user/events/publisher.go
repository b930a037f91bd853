package events

import (
	"context"

	"github.com/tokotrack/tokotrack-backend/internal/user/domain"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/messaging"
)

// eventSink abstracts the underlying publisher so tests can capture events
type eventSink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// UserEventPublisher publishes user-related events
type UserEventPublisher struct {
	publisher eventSink
	logger    *logger.Logger
}

// NewUserEventPublisher creates a new user event publisher
func NewUserEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*UserEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeUserEvents, "api-server", log)
	if err != nil {
		return nil, err
	}

	return &UserEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// NewUserEventPublisherWithSink creates a publisher backed by any sink.
// Used in tests with a mock sink.
func NewUserEventPublisherWithSink(sink eventSink, log *logger.Logger) *UserEventPublisher {
	return &UserEventPublisher{
		publisher: sink,
		logger:    log,
	}
}

// PublishUserCreated publishes a user created event
func (p *UserEventPublisher) PublishUserCreated(ctx context.Context, user *domain.User) {
	data := messaging.UserCreatedEvent{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}

	if err := p.publisher.Publish(ctx, messaging.EventUserCreated, data); err != nil {
		p.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to publish user created event")
	}
}

// PublishUserUpdated publishes a user updated event
func (p *UserEventPublisher) PublishUserUpdated(ctx context.Context, user *domain.User, changes map[string]interface{}) {
	data := messaging.UserUpdatedEvent{
		UserID: user.ID,
		Fields: changes,
	}

	if err := p.publisher.Publish(ctx, messaging.EventUserUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to publish user updated event")
	}
}

// PublishUserDeleted publishes a user deleted event
func (p *UserEventPublisher) PublishUserDeleted(ctx context.Context, userID, email string) {
	data := messaging.UserDeletedEvent{
		UserID: userID,
		Email:  email,
	}

	if err := p.publisher.Publish(ctx, messaging.EventUserDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("user_id", userID).Msg("failed to publish user deleted event")
	}
}

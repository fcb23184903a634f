package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/2003abdulhadi/clypsy-website/internal/core/domain"
	"github.com/2003abdulhadi/clypsy-website/internal/core/port"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs auth.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"email":         logger.MaskEmail(event.Email),
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("auth.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserSignedIn logs auth.user.signed_in events.
func (p *StubPublisher) PublishUserSignedIn(_ context.Context, event domain.UserSignedInEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"signed_in_at": event.SignedInAt,
	}
	p.logEvent("auth.user.signed_in", event.UserID, event.SignedInAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

package port

import (
	"context"

	"github.com/2003abdulhadi/clypsy-website/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserSignedIn(ctx context.Context, event domain.UserSignedInEvent) error
}

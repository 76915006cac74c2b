package ports

import (
	"context"

	"github.com/harborworks/claimstream/internal/domain"
)

// EventPublisher is the outbound domain-event publish port.
// The application uses this abstraction to keep broker/client concerns in adapters.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, aggregateID string, data map[string]any, correlationID string) (string, error)
}

// EventHandler processes one decoded envelope. Returning nil acknowledges the
// entry; returning an error leaves it pending for redelivery. Delivery is
// at-least-once, so handlers must tolerate re-application of the same event.
type EventHandler func(ctx context.Context, envelope domain.EventEnvelope) error

// EventLog is the durable append-only envelope store used for replay. The
// publisher treats it as best-effort; a nil EventLog means stream-only mode.
type EventLog interface {
	Append(ctx context.Context, envelope domain.EventEnvelope) error
	ListByAggregate(ctx context.Context, aggregateID string) ([]domain.EventEnvelope, error)
	ListByType(ctx context.Context, eventType string) ([]domain.EventEnvelope, error)
	ListByCorrelation(ctx context.Context, correlationID string) ([]domain.EventEnvelope, error)
}

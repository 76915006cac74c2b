package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

// Publisher appends each envelope to the durable event log, then emits it on
// the per-type stream and the catch-all audit stream. The log write is
// best-effort: a nil eventLog means the store was unreachable at startup and
// the publisher runs stream-only. The two writes are independent appends, so
// a failure between them leaves a torn window (log without stream entry or
// the reverse); that gap is accepted rather than bridged with a transaction.
type Publisher struct {
	logger      *slog.Logger
	broker      ports.StreamBroker
	eventLog    ports.EventLog
	service     string
	auditStream string
	nowFn       func() time.Time
	newID       func() string
}

func NewPublisher(logger *slog.Logger, broker ports.StreamBroker, eventLog ports.EventLog, service string) *Publisher {
	if eventLog == nil {
		logger.Warn("event log unavailable; publisher running stream-only",
			"module", "events.publisher",
			"operation", "new_publisher",
		)
	}
	return &Publisher{
		logger:      logger,
		broker:      broker,
		eventLog:    eventLog,
		service:     service,
		auditStream: domain.AuditStream,
		nowFn:       func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Publish assigns a fresh event id, defaults the correlation id, stamps the
// publish time and fans the envelope out. It fails only when a stream write
// fails; the downstream consumers read the streams, not the log.
func (p *Publisher) Publish(ctx context.Context, eventType, aggregateID string, data map[string]any, correlationID string) (string, error) {
	if correlationID == "" {
		correlationID = p.newID()
	}
	envelope := domain.EventEnvelope{
		EventID:       p.newID(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		Data:          data,
		Timestamp:     p.nowFn(),
		CorrelationID: correlationID,
		Service:       p.service,
	}

	if p.eventLog == nil {
		p.logger.DebugContext(ctx, "skipping event log append in stream-only mode",
			"module", "events.publisher",
			"operation", "append_event_log",
			"event_id", envelope.EventID,
		)
	} else {
		if err := p.eventLog.Append(ctx, envelope); err != nil {
			p.logger.WarnContext(ctx, "event log append failed; continuing stream-only",
				"module", "events.publisher",
				"operation", "append_event_log",
				"outcome", "failure",
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err,
			)
		}
	}

	fields, err := EncodeEnvelope(envelope)
	if err != nil {
		return "", err
	}
	if _, err := p.broker.Append(ctx, domain.StreamForEvent(eventType), fields); err != nil {
		return "", fmt.Errorf("append to event stream: %w", err)
	}
	if _, err := p.broker.Append(ctx, p.auditStream, fields); err != nil {
		return "", fmt.Errorf("append to audit stream: %w", err)
	}

	p.logger.InfoContext(ctx, "event published",
		"module", "events.publisher",
		"operation", "publish_event",
		"outcome", "success",
		"event_id", envelope.EventID,
		"event_type", envelope.EventType,
		"aggregate_id", envelope.AggregateID,
		"correlation_id", envelope.CorrelationID,
	)
	return envelope.EventID, nil
}

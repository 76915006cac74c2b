package domain

import (
	"strings"
	"time"
)

const (
	// EventClaimCreated and friends are the claim lifecycle facts exchanged
	// between services. Stream names derive from these (see StreamForEvent).
	EventClaimCreated  = "claim.created"
	EventClaimAssigned = "claim.assigned"
	EventClaimStarted  = "claim.started"
	EventClaimResolved = "claim.resolved"
	EventClaimClosed   = "claim.closed"
)

// AuditStream is the shared catch-all stream every published event is
// mirrored onto for audit/fan-out consumers.
const AuditStream = "events.all"

// EventEnvelope is the immutable record describing one occurrence. It is
// created exactly once at publish time and never mutated afterwards.
type EventEnvelope struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	AggregateID   string         `json:"aggregate_id"`
	Data          map[string]any `json:"data"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
	Service       string         `json:"service"`
}

// StreamForEvent maps an event type to its per-type stream name.
func StreamForEvent(eventType string) string {
	return strings.ToLower(strings.TrimSpace(eventType))
}

// ValidateEnvelope rejects envelopes missing routing or correlation metadata.
func ValidateEnvelope(envelope EventEnvelope) error {
	if strings.TrimSpace(envelope.EventID) == "" || strings.TrimSpace(envelope.EventType) == "" {
		return ErrInvalidEnvelope
	}
	if strings.TrimSpace(envelope.AggregateID) == "" || envelope.Timestamp.IsZero() {
		return ErrInvalidEnvelope
	}
	if strings.TrimSpace(envelope.CorrelationID) == "" || strings.TrimSpace(envelope.Service) == "" {
		return ErrInvalidEnvelope
	}
	return nil
}

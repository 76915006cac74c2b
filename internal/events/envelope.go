// Package events implements the publish/consume protocol: envelope encoding
// for the stream transport, the dual-write publisher, and the consumer-group
// polling loops with pending-entry reclaim.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harborworks/claimstream/internal/domain"
)

// EncodeEnvelope flattens an envelope to string field/value pairs for the
// transport. The structured data payload is serialized to JSON text; every
// scalar field travels as a string.
func EncodeEnvelope(envelope domain.EventEnvelope) (map[string]string, error) {
	if err := domain.ValidateEnvelope(envelope); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	return map[string]string{
		"event_id":       envelope.EventID,
		"event_type":     envelope.EventType,
		"aggregate_id":   envelope.AggregateID,
		"data":           string(payload),
		"timestamp":      envelope.Timestamp.UTC().Format(time.RFC3339Nano),
		"correlation_id": envelope.CorrelationID,
		"service":        envelope.Service,
	}, nil
}

// DecodeEntry rebuilds an envelope from transport fields.
func DecodeEntry(fields map[string]string) (domain.EventEnvelope, error) {
	envelope := domain.EventEnvelope{
		EventID:       fields["event_id"],
		EventType:     fields["event_type"],
		AggregateID:   fields["aggregate_id"],
		CorrelationID: fields["correlation_id"],
		Service:       fields["service"],
	}
	if raw := fields["timestamp"]; raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.EventEnvelope{}, fmt.Errorf("decode event timestamp: %w", domain.ErrInvalidEnvelope)
		}
		envelope.Timestamp = ts.UTC()
	}
	if raw := fields["data"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &envelope.Data); err != nil {
			return domain.EventEnvelope{}, fmt.Errorf("decode event data: %w", domain.ErrInvalidEnvelope)
		}
	}
	if err := domain.ValidateEnvelope(envelope); err != nil {
		return domain.EventEnvelope{}, err
	}
	return envelope, nil
}

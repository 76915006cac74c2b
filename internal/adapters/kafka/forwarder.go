// Package kafka forwards audited envelopes to a Kafka topic for consumers
// outside the Redis deployment boundary.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

type Forwarder struct {
	writer *kafka.Writer
	topic  string
}

func NewForwarder(brokers []string, topic string) (*Forwarder, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka forwarder requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka forwarder requires a topic")
	}
	return &Forwarder{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// Handle re-encodes the envelope as JSON and writes it keyed by aggregate id,
// so per-aggregate order survives partitioning. Registered on the catch-all
// audit stream; returning an error leaves the entry pending for retry, which
// gives the forward the same at-least-once contract as every other handler.
func (f *Forwarder) Handle(ctx context.Context, envelope domain.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode audit envelope: %w", err)
	}
	err = f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(envelope.AggregateID),
		Value: payload,
		Time:  envelope.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("forward audit envelope: %w", err)
	}
	return nil
}

// Register binds the forwarder to every claim lifecycle event type, which is
// the full set of types the audit stream carries today.
func (f *Forwarder) Register(register func(eventType string, handler ports.EventHandler)) {
	for _, eventType := range []string{
		domain.EventClaimCreated,
		domain.EventClaimAssigned,
		domain.EventClaimStarted,
		domain.EventClaimResolved,
		domain.EventClaimClosed,
	} {
		register(eventType, f.Handle)
	}
}

func (f *Forwarder) Close() error {
	return f.writer.Close()
}

package ports

import (
	"context"
	"time"
)

// StreamEntry is one transport record: an id assigned by the broker plus flat
// string field/value pairs. Structured payloads are pre-serialized to text by
// the publisher and decoded again by handlers.
type StreamEntry struct {
	ID     string
	Fields map[string]string
}

// StreamBroker is the stream-transport port: consumer-group creation
// idempotent against "already exists", blocking reads of group-undelivered
// entries, per-entry acknowledgment, pending-set enumeration, direct fetch by
// id for reclaim, and appends.
type StreamBroker interface {
	// EnsureGroup creates the group positioned at the start of the stream,
	// treating an already existing group as a no-op.
	EnsureGroup(ctx context.Context, stream, group string) error
	// ReadNew blocks up to block for entries not yet delivered to the group.
	// A timeout with no data returns an empty slice and nil error.
	ReadNew(ctx context.Context, stream, group, consumer string, count int, block time.Duration) ([]StreamEntry, error)
	Ack(ctx context.Context, stream, group string, ids ...string) error
	// Pending lists ids of delivered-but-unacknowledged entries for the group.
	Pending(ctx context.Context, stream, group string, count int) ([]string, error)
	// FetchByID re-reads one entry for reclaim; ok is false when the entry no
	// longer exists (trimmed or deleted).
	FetchByID(ctx context.Context, stream, id string) (StreamEntry, bool, error)
	Append(ctx context.Context, stream string, fields map[string]string) (string, error)
}

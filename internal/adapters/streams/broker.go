// Package streams adapts Redis Streams to the StreamBroker port. Entries are
// flat string field/value records; consumer groups track the delivered-but-
// unacknowledged set that the reclaim pass re-reads.
package streams

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborworks/claimstream/internal/ports"
)

type Broker struct {
	client *redis.Client
}

func NewBroker(client *redis.Client) *Broker {
	return &Broker{client: client}
}

// EnsureGroup creates the consumer group at the start of the stream (creating
// the stream alongside it when absent). An already existing group is a no-op.
func (b *Broker) EnsureGroup(ctx context.Context, stream, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", group, stream, err)
	}
	return nil
}

func (b *Broker) ReadNew(ctx context.Context, stream, group, consumer string, count int, block time.Duration) ([]ports.StreamEntry, error) {
	result, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    int64(count),
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read group %s on %s: %w", group, stream, err)
	}

	var entries []ports.StreamEntry
	for _, str := range result {
		for _, msg := range str.Messages {
			entries = append(entries, toEntry(msg))
		}
	}
	return entries, nil
}

func (b *Broker) Ack(ctx context.Context, stream, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := b.client.XAck(ctx, stream, group, ids...).Err(); err != nil {
		return fmt.Errorf("ack on %s: %w", stream, err)
	}
	return nil
}

func (b *Broker) Pending(ctx context.Context, stream, group string, count int) ([]string, error) {
	pending, err := b.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  group,
		Start:  "-",
		End:    "+",
		Count:  int64(count),
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("list pending on %s: %w", stream, err)
	}
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (b *Broker) FetchByID(ctx context.Context, stream, id string) (ports.StreamEntry, bool, error) {
	msgs, err := b.client.XRange(ctx, stream, id, id).Result()
	if err != nil {
		return ports.StreamEntry{}, false, fmt.Errorf("fetch entry %s on %s: %w", id, stream, err)
	}
	if len(msgs) == 0 {
		return ports.StreamEntry{}, false, nil
	}
	return toEntry(msgs[0]), true, nil
}

func (b *Broker) Append(ctx context.Context, stream string, fields map[string]string) (string, error) {
	values := make(map[string]any, len(fields))
	for key, value := range fields {
		values[key] = value
	}
	id, err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", stream, err)
	}
	return id, nil
}

func toEntry(msg redis.XMessage) ports.StreamEntry {
	fields := make(map[string]string, len(msg.Values))
	for key, value := range msg.Values {
		if s, ok := value.(string); ok {
			fields[key] = s
			continue
		}
		fields[key] = fmt.Sprint(value)
	}
	return ports.StreamEntry{ID: msg.ID, Fields: fields}
}

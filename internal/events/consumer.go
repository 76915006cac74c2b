package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harborworks/claimstream/internal/ports"
)

// UnroutablePolicy decides what happens to an entry whose event type has no
// registered handler. Acking keeps poison messages from accumulating forever
// at the cost of silently dropping events a late-registered handler would
// have wanted; leaving them pending makes them visible but they pile up.
type UnroutablePolicy string

const (
	UnroutableAck          UnroutablePolicy = "ack"
	UnroutableLeavePending UnroutablePolicy = "leave_pending"
)

// ConsumerConfig tunes the per-stream polling loops. Zero values fall back to
// defaults biased for low latency over throughput.
type ConsumerConfig struct {
	Group        string
	Consumer     string
	ReadCount    int
	PollBlock    time.Duration
	ReclaimBatch int
	ErrorBackoff time.Duration
	Unroutable   UnroutablePolicy
}

// Consumer joins a consumer group on one or more streams, dispatches entries
// to per-event-type handlers and acknowledges on success. Failed or abandoned
// entries stay in the group's pending set and are re-attempted by the reclaim
// pass of any live group member, which is what makes delivery at-least-once.
type Consumer struct {
	logger *slog.Logger
	broker ports.StreamBroker
	cfg    ConsumerConfig

	handlers map[string]ports.EventHandler

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewConsumer(logger *slog.Logger, broker ports.StreamBroker, cfg ConsumerConfig) *Consumer {
	if cfg.ReadCount <= 0 {
		cfg.ReadCount = 1
	}
	if cfg.PollBlock <= 0 {
		cfg.PollBlock = time.Second
	}
	if cfg.ReclaimBatch <= 0 {
		cfg.ReclaimBatch = 10
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 5 * time.Second
	}
	if cfg.Unroutable == "" {
		cfg.Unroutable = UnroutableAck
	}
	return &Consumer{
		logger:   logger,
		broker:   broker,
		cfg:      cfg,
		handlers: map[string]ports.EventHandler{},
	}
}

// RegisterHandler binds a handler to an event type, replacing any previous
// one. The registry must be fully populated before StartConsuming; it is
// read-only once the loops are running.
func (c *Consumer) RegisterHandler(eventType string, handler ports.EventHandler) {
	c.handlers[eventType] = handler
}

// StartConsuming ensures the consumer group exists on every stream and starts
// one polling loop per stream. Group creation tolerates an already existing
// group; any other creation failure aborts the start.
func (c *Consumer) StartConsuming(ctx context.Context, streams []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	for _, stream := range streams {
		if err := c.broker.EnsureGroup(ctx, stream, c.cfg.Group); err != nil {
			return err
		}
	}
	c.running = true
	c.stop = make(chan struct{})
	for _, stream := range streams {
		c.wg.Add(1)
		go c.consumeLoop(ctx, stream)
	}
	c.logger.InfoContext(ctx, "consumer started",
		"module", "events.consumer",
		"operation", "start_consuming",
		"outcome", "success",
		"group", c.cfg.Group,
		"consumer", c.cfg.Consumer,
		"stream_count", len(streams),
	)
	return nil
}

// StopConsuming signals every loop to exit and waits for them. In-flight
// handler calls finish; they are not interrupted.
func (c *Consumer) StopConsuming() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("consumer stopped",
		"module", "events.consumer",
		"operation", "stop_consuming",
		"outcome", "success",
		"group", c.cfg.Group,
		"consumer", c.cfg.Consumer,
	)
}

func (c *Consumer) stopped(ctx context.Context) bool {
	select {
	case <-c.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// backoff sleeps for the error backoff interval but wakes early on shutdown.
func (c *Consumer) backoff(ctx context.Context) {
	timer := time.NewTimer(c.cfg.ErrorBackoff)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-c.stop:
	case <-ctx.Done():
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, stream string) {
	defer c.wg.Done()
	for !c.stopped(ctx) {
		entries, err := c.broker.ReadNew(ctx, stream, c.cfg.Group, c.cfg.Consumer, c.cfg.ReadCount, c.cfg.PollBlock)
		if err != nil {
			if c.stopped(ctx) {
				return
			}
			c.logger.ErrorContext(ctx, "stream read failed; backing off",
				"module", "events.consumer",
				"operation", "read_new_entries",
				"outcome", "failure",
				"stream", stream,
				"group", c.cfg.Group,
				"error", err,
			)
			c.backoff(ctx)
			continue
		}
		for _, entry := range entries {
			c.processEntry(ctx, stream, entry)
		}
		if err := c.reclaimPending(ctx, stream); err != nil {
			if c.stopped(ctx) {
				return
			}
			c.logger.ErrorContext(ctx, "reclaim pass failed; backing off",
				"module", "events.consumer",
				"operation", "reclaim_pending",
				"outcome", "failure",
				"stream", stream,
				"group", c.cfg.Group,
				"error", err,
			)
			c.backoff(ctx)
		}
	}
}

// processEntry decodes, dispatches and acknowledges one entry. Handler errors
// leave the entry pending for a later reclaim pass; a decode failure or an
// unroutable type is resolved according to the unroutable policy, since
// retrying either can never succeed.
func (c *Consumer) processEntry(ctx context.Context, stream string, entry ports.StreamEntry) {
	envelope, err := DecodeEntry(entry.Fields)
	if err != nil {
		c.logger.WarnContext(ctx, "undecodable stream entry",
			"module", "events.consumer",
			"operation", "decode_entry",
			"outcome", "failure",
			"stream", stream,
			"entry_id", entry.ID,
			"error", err,
		)
		if c.cfg.Unroutable == UnroutableAck {
			c.ack(ctx, stream, entry.ID)
		}
		return
	}

	handler, ok := c.handlers[envelope.EventType]
	if !ok {
		if c.cfg.Unroutable == UnroutableAck {
			c.logger.WarnContext(ctx, "no handler for event type; dropping",
				"module", "events.consumer",
				"operation", "dispatch_entry",
				"outcome", "dropped",
				"stream", stream,
				"entry_id", entry.ID,
				"event_type", envelope.EventType,
			)
			c.ack(ctx, stream, entry.ID)
		}
		return
	}

	if err := handler(ctx, envelope); err != nil {
		c.logger.ErrorContext(ctx, "handler failed; entry left pending",
			"module", "events.consumer",
			"operation", "dispatch_entry",
			"outcome", "failure",
			"stream", stream,
			"entry_id", entry.ID,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"error", err,
		)
		return
	}
	c.ack(ctx, stream, entry.ID)
}

// reclaimPending re-attempts delivered-but-unacknowledged entries for this
// stream. Entries that no longer exist on the stream are acknowledged so the
// pending set cannot grow without bound after trims.
func (c *Consumer) reclaimPending(ctx context.Context, stream string) error {
	ids, err := c.broker.Pending(ctx, stream, c.cfg.Group, c.cfg.ReclaimBatch)
	if err != nil {
		return err
	}
	for _, id := range ids {
		entry, ok, err := c.broker.FetchByID(ctx, stream, id)
		if err != nil {
			return err
		}
		if !ok {
			c.ack(ctx, stream, id)
			continue
		}
		c.processEntry(ctx, stream, entry)
	}
	return nil
}

func (c *Consumer) ack(ctx context.Context, stream, id string) {
	if err := c.broker.Ack(ctx, stream, c.cfg.Group, id); err != nil {
		c.logger.ErrorContext(ctx, "ack failed",
			"module", "events.consumer",
			"operation", "ack_entry",
			"outcome", "failure",
			"stream", stream,
			"group", c.cfg.Group,
			"entry_id", id,
			"error", err,
		)
	}
}

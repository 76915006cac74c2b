// Package projections populates the denormalized claim read models from
// consumed lifecycle events. The consumer core only guarantees these handlers
// are invoked; everything about the shapes lives here.
package projections

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

type Projector struct {
	logger *slog.Logger
	store  ports.ReadModelRepository

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewProjector(logger *slog.Logger, store ports.ReadModelRepository) *Projector {
	return &Projector{
		logger: logger,
		store:  store,
		seen:   map[string]struct{}{},
	}
}

// Register binds the projector to every claim lifecycle event type.
func (p *Projector) Register(register func(eventType string, handler ports.EventHandler)) {
	register(domain.EventClaimCreated, p.Handle)
	register(domain.EventClaimAssigned, p.Handle)
	register(domain.EventClaimStarted, p.Handle)
	register(domain.EventClaimResolved, p.Handle)
	register(domain.EventClaimClosed, p.Handle)
}

// alreadyProcessed guards the counter bumps against at-least-once redelivery;
// the view upsert itself is naturally idempotent. An event counts as processed
// only once every bump has succeeded, so a partial failure leaves it eligible
// for re-application on the next delivery.
func (p *Projector) alreadyProcessed(eventID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[eventID]
	return ok
}

func (p *Projector) markProcessed(eventID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[eventID] = struct{}{}
}

// Handle upserts the per-claim view and bumps the per-customer, per-agent,
// per-claim-type and daily aggregates according to the event type.
func (p *Projector) Handle(ctx context.Context, envelope domain.EventEnvelope) error {
	claim, err := claimFromEnvelope(envelope)
	if err != nil {
		return err
	}

	view := ports.ClaimView{
		ClaimID:       claim.ClaimID,
		CustomerID:    claim.CustomerID,
		ClaimType:     claim.ClaimType,
		Status:        claim.Status,
		AssignedAgent: claim.AssignedAgent,
		Resolution:    claim.Resolution,
		CreatedAt:     claim.CreatedAt,
		UpdatedAt:     claim.UpdatedAt,
	}
	if err := p.store.UpsertClaimView(ctx, view); err != nil {
		return err
	}

	if p.alreadyProcessed(envelope.EventID) {
		return nil
	}

	at := envelope.Timestamp
	day := at.Truncate(24 * time.Hour)
	switch envelope.EventType {
	case domain.EventClaimCreated:
		if err := p.store.BumpCustomerSummary(ctx, claim.CustomerID, 1, 1, at); err != nil {
			return err
		}
		if err := p.store.BumpClaimTypeStats(ctx, claim.ClaimType, 1, 0, at); err != nil {
			return err
		}
		if err := p.store.BumpDailyStats(ctx, day, 1, 0); err != nil {
			return err
		}
	case domain.EventClaimAssigned:
		if err := p.store.BumpAgentSummary(ctx, claim.AssignedAgent, 1, 0, at); err != nil {
			return err
		}
	case domain.EventClaimResolved:
		if err := p.store.BumpAgentSummary(ctx, claim.AssignedAgent, 0, 1, at); err != nil {
			return err
		}
		if err := p.store.BumpClaimTypeStats(ctx, claim.ClaimType, 0, 1, at); err != nil {
			return err
		}
	case domain.EventClaimClosed:
		if err := p.store.BumpCustomerSummary(ctx, claim.CustomerID, 0, -1, at); err != nil {
			return err
		}
		if err := p.store.BumpDailyStats(ctx, day, 0, 1); err != nil {
			return err
		}
	}
	p.markProcessed(envelope.EventID)

	p.logger.DebugContext(ctx, "claim projection applied",
		"module", "projections",
		"operation", "project_claim_event",
		"outcome", "success",
		"event_id", envelope.EventID,
		"event_type", envelope.EventType,
		"claim_id", claim.ClaimID,
	)
	return nil
}

func claimFromEnvelope(envelope domain.EventEnvelope) (domain.Claim, error) {
	record := make(map[string]string, len(envelope.Data))
	for key, value := range envelope.Data {
		if s, ok := value.(string); ok {
			record[key] = s
		}
	}
	return domain.ClaimFromRecord(record)
}

package projections

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

type bump struct {
	key    string
	first  int
	second int
}

type fakeReadModels struct {
	views       []ports.ClaimView
	customers   []bump
	agents      []bump
	types       []bump
	daily       []bump
	typeErrOnce error
}

func (s *fakeReadModels) UpsertClaimView(_ context.Context, view ports.ClaimView) error {
	s.views = append(s.views, view)
	return nil
}

func (s *fakeReadModels) BumpCustomerSummary(_ context.Context, customerID string, totalDelta, openDelta int, _ time.Time) error {
	s.customers = append(s.customers, bump{customerID, totalDelta, openDelta})
	return nil
}

func (s *fakeReadModels) BumpAgentSummary(_ context.Context, agentID string, assignedDelta, resolvedDelta int, _ time.Time) error {
	s.agents = append(s.agents, bump{agentID, assignedDelta, resolvedDelta})
	return nil
}

func (s *fakeReadModels) BumpClaimTypeStats(_ context.Context, claimType string, totalDelta, resolvedDelta int, _ time.Time) error {
	if err := s.typeErrOnce; err != nil {
		s.typeErrOnce = nil
		return err
	}
	s.types = append(s.types, bump{claimType, totalDelta, resolvedDelta})
	return nil
}

func (s *fakeReadModels) BumpDailyStats(_ context.Context, day time.Time, openedDelta, closedDelta int) error {
	s.daily = append(s.daily, bump{day.Format("2006-01-02"), openedDelta, closedDelta})
	return nil
}

func lifecycleEnvelope(t *testing.T, eventID, eventType, status string) domain.EventEnvelope {
	t.Helper()
	now := time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC)
	claim, err := domain.NewClaim("claim_1", "cust_1", domain.ClaimTypeProductDefect, "screen cracked", "prod_1", now)
	if err != nil {
		t.Fatalf("new claim: %v", err)
	}
	claim.Status = status
	if status != domain.ClaimStatusCreated {
		claim.AssignedAgent = "agent_1"
	}

	data := map[string]any{}
	for key, value := range claim.ToRecord() {
		data[key] = value
	}
	return domain.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		AggregateID:   claim.ClaimID,
		Data:          data,
		Timestamp:     now,
		CorrelationID: "corr-1",
		Service:       "claims-service",
	}
}

func newTestProjector(store *fakeReadModels) *Projector {
	return NewProjector(slog.New(slog.NewTextHandler(io.Discard, nil)), store)
}

func TestHandleCreatedEventBumpsOpenCounters(t *testing.T) {
	store := &fakeReadModels{}
	projector := newTestProjector(store)

	envelope := lifecycleEnvelope(t, "evt-1", domain.EventClaimCreated, domain.ClaimStatusCreated)
	if err := projector.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(store.views) != 1 || store.views[0].ClaimID != "claim_1" || store.views[0].Status != domain.ClaimStatusCreated {
		t.Fatalf("unexpected view upserts: %+v", store.views)
	}
	if len(store.customers) != 1 || store.customers[0] != (bump{"cust_1", 1, 1}) {
		t.Fatalf("unexpected customer bumps: %+v", store.customers)
	}
	if len(store.types) != 1 || store.types[0] != (bump{domain.ClaimTypeProductDefect, 1, 0}) {
		t.Fatalf("unexpected type bumps: %+v", store.types)
	}
	if len(store.daily) != 1 || store.daily[0] != (bump{"2025-05-12", 1, 0}) {
		t.Fatalf("unexpected daily bumps: %+v", store.daily)
	}
	if len(store.agents) != 0 {
		t.Fatalf("unexpected agent bumps: %+v", store.agents)
	}
}

func TestHandleResolvedEventCreditsAgentAndType(t *testing.T) {
	store := &fakeReadModels{}
	projector := newTestProjector(store)

	envelope := lifecycleEnvelope(t, "evt-1", domain.EventClaimResolved, domain.ClaimStatusResolved)
	if err := projector.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(store.agents) != 1 || store.agents[0] != (bump{"agent_1", 0, 1}) {
		t.Fatalf("unexpected agent bumps: %+v", store.agents)
	}
	if len(store.types) != 1 || store.types[0] != (bump{domain.ClaimTypeProductDefect, 0, 1}) {
		t.Fatalf("unexpected type bumps: %+v", store.types)
	}
}

func TestHandleClosedEventDecrementsOpenClaims(t *testing.T) {
	store := &fakeReadModels{}
	projector := newTestProjector(store)

	envelope := lifecycleEnvelope(t, "evt-1", domain.EventClaimClosed, domain.ClaimStatusClosed)
	if err := projector.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(store.customers) != 1 || store.customers[0] != (bump{"cust_1", 0, -1}) {
		t.Fatalf("unexpected customer bumps: %+v", store.customers)
	}
	if len(store.daily) != 1 || store.daily[0] != (bump{"2025-05-12", 0, 1}) {
		t.Fatalf("unexpected daily bumps: %+v", store.daily)
	}
}

func TestHandleRedeliverySkipsCounterBumps(t *testing.T) {
	store := &fakeReadModels{}
	projector := newTestProjector(store)

	envelope := lifecycleEnvelope(t, "evt-1", domain.EventClaimCreated, domain.ClaimStatusCreated)
	for i := 0; i < 2; i++ {
		if err := projector.Handle(context.Background(), envelope); err != nil {
			t.Fatalf("handle attempt %d: %v", i, err)
		}
	}

	// The view upsert runs on every delivery; the counter bumps only once.
	if len(store.views) != 2 {
		t.Fatalf("view upserts = %d, want 2", len(store.views))
	}
	if len(store.customers) != 1 || len(store.types) != 1 || len(store.daily) != 1 {
		t.Fatalf("counter bumps repeated: customers=%d types=%d daily=%d",
			len(store.customers), len(store.types), len(store.daily))
	}
}

func TestHandleRetriesBumpsAfterPartialFailure(t *testing.T) {
	store := &fakeReadModels{typeErrOnce: errors.New("store down")}
	projector := newTestProjector(store)

	envelope := lifecycleEnvelope(t, "evt-1", domain.EventClaimCreated, domain.ClaimStatusCreated)
	if err := projector.Handle(context.Background(), envelope); err == nil {
		t.Fatal("expected first delivery to fail on the type bump")
	}
	if err := projector.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	// The failed bump and the ones after it land on redelivery; the customer
	// bump that succeeded before the failure is re-applied, not dropped.
	if len(store.types) != 1 || store.types[0] != (bump{domain.ClaimTypeProductDefect, 1, 0}) {
		t.Fatalf("type bump lost after redelivery: %+v", store.types)
	}
	if len(store.daily) != 1 {
		t.Fatalf("daily bump lost after redelivery: %+v", store.daily)
	}
	if len(store.customers) != 2 {
		t.Fatalf("customer bumps = %d, want re-application on redelivery", len(store.customers))
	}

	// A third delivery after full success is a no-op for every counter.
	if err := projector.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("third delivery: %v", err)
	}
	if len(store.types) != 1 || len(store.daily) != 1 || len(store.customers) != 2 {
		t.Fatalf("counters bumped after the event was fully processed: types=%d daily=%d customers=%d",
			len(store.types), len(store.daily), len(store.customers))
	}
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	store := &fakeReadModels{}
	projector := newTestProjector(store)

	envelope := lifecycleEnvelope(t, "evt-1", domain.EventClaimCreated, domain.ClaimStatusCreated)
	envelope.Data["claim_type"] = "warranty"
	if err := projector.Handle(context.Background(), envelope); err == nil {
		t.Fatal("expected error for unknown claim type in payload")
	}
	if len(store.views) != 0 {
		t.Fatalf("view upserts = %d, want 0", len(store.views))
	}
}

package ports

import (
	"context"
	"time"
)

// Read-model rows are denormalized projections of claim lifecycle events.
// Column layout is fixed; how they are populated is up to the registered
// projection handler.

type ClaimView struct {
	ClaimID       string
	CustomerID    string
	ClaimType     string
	Status        string
	AssignedAgent string
	Resolution    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReadModelRepository upserts the projection rows keyed by the identifiers in
// the event payload. Deltas are applied by the store so concurrent projection
// workers do not lose counts.
type ReadModelRepository interface {
	UpsertClaimView(ctx context.Context, view ClaimView) error
	BumpCustomerSummary(ctx context.Context, customerID string, totalDelta, openDelta int, at time.Time) error
	BumpAgentSummary(ctx context.Context, agentID string, assignedDelta, resolvedDelta int, at time.Time) error
	BumpClaimTypeStats(ctx context.Context, claimType string, totalDelta, resolvedDelta int, at time.Time) error
	BumpDailyStats(ctx context.Context, day time.Time, openedDelta, closedDelta int) error
}

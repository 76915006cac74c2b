package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborworks/claimstream/internal/ports"
)

// readModelRepository applies projection upserts. Counter columns are bumped
// with SQL expressions under ON CONFLICT so concurrent projection workers
// cannot lose increments.
type readModelRepository struct {
	db *gorm.DB
}

func (r *readModelRepository) UpsertClaimView(ctx context.Context, view ports.ClaimView) error {
	row := claimViewModel(view)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "claim_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (r *readModelRepository) BumpCustomerSummary(ctx context.Context, customerID string, totalDelta, openDelta int, at time.Time) error {
	row := customerClaimSummaryModel{
		CustomerID:  customerID,
		TotalClaims: totalDelta,
		OpenClaims:  openDelta,
		UpdatedAt:   at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_claims": gorm.Expr("customer_claim_summaries.total_claims + ?", totalDelta),
			"open_claims":  gorm.Expr("customer_claim_summaries.open_claims + ?", openDelta),
			"updated_at":   at,
		}),
	}).Create(&row).Error
}

func (r *readModelRepository) BumpAgentSummary(ctx context.Context, agentID string, assignedDelta, resolvedDelta int, at time.Time) error {
	row := agentClaimSummaryModel{
		AgentID:        agentID,
		AssignedClaims: assignedDelta,
		ResolvedClaims: resolvedDelta,
		UpdatedAt:      at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "agent_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"assigned_claims": gorm.Expr("agent_claim_summaries.assigned_claims + ?", assignedDelta),
			"resolved_claims": gorm.Expr("agent_claim_summaries.resolved_claims + ?", resolvedDelta),
			"updated_at":      at,
		}),
	}).Create(&row).Error
}

func (r *readModelRepository) BumpClaimTypeStats(ctx context.Context, claimType string, totalDelta, resolvedDelta int, at time.Time) error {
	row := claimTypeStatsModel{
		ClaimType:   claimType,
		TotalClaims: totalDelta,
		Resolved:    resolvedDelta,
		UpdatedAt:   at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "claim_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_claims": gorm.Expr("claim_type_stats.total_claims + ?", totalDelta),
			"resolved":     gorm.Expr("claim_type_stats.resolved + ?", resolvedDelta),
			"updated_at":   at,
		}),
	}).Create(&row).Error
}

func (r *readModelRepository) BumpDailyStats(ctx context.Context, day time.Time, openedDelta, closedDelta int) error {
	row := dailyClaimStatsModel{
		Day:          day,
		ClaimsOpened: openedDelta,
		ClaimsClosed: closedDelta,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"claims_opened": gorm.Expr("daily_claim_stats.claims_opened + ?", openedDelta),
			"claims_closed": gorm.Expr("daily_claim_stats.claims_closed + ?", closedDelta),
		}),
	}).Create(&row).Error
}

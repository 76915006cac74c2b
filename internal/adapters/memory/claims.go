// Package memory provides map-backed repositories used by tests and by the
// stream-only degraded mode when Postgres is unreachable at startup.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/harborworks/claimstream/internal/domain"
)

type ClaimRepository struct {
	mu   sync.Mutex
	rows map[string]domain.Claim
}

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{rows: map[string]domain.Claim{}}
}

func (r *ClaimRepository) Create(_ context.Context, claim domain.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[claim.ClaimID]; ok {
		return domain.ErrConflict
	}
	r.rows[claim.ClaimID] = claim
	return nil
}

func (r *ClaimRepository) GetByID(_ context.Context, claimID string) (domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.rows[claimID]
	if !ok {
		return domain.Claim{}, domain.ErrNotFound
	}
	return claim, nil
}

func (r *ClaimRepository) Update(_ context.Context, claim domain.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[claim.ClaimID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[claim.ClaimID] = claim
	return nil
}

func (r *ClaimRepository) List(_ context.Context, customerID, status string, limit, offset int) ([]domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}

	out := make([]domain.Claim, 0, len(r.rows))
	for _, claim := range r.rows {
		if customerID != "" && claim.CustomerID != customerID {
			continue
		}
		if status != "" && claim.Status != status {
			continue
		}
		out = append(out, claim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

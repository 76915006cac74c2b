// Package ledger holds the process-wide inventory ledger mutated by consumed
// claim events.
package ledger

import (
	"sync"
	"time"
)

// Adjustment is one append-only history record. OldStock/NewStock capture the
// clamped result actually applied, not the requested delta.
type Adjustment struct {
	ProductID string    `json:"product_id"`
	Delta     int       `json:"delta"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
	Reason    string    `json:"reason"`
	ClaimID   string    `json:"claim_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger is a concurrency-safe product->stock store with an append-only
// adjustment history. One mutex covers both structures; it is held only for
// the in-memory update, never across I/O.
type Ledger struct {
	mu      sync.Mutex
	stock   map[string]int
	history []Adjustment
	nowFn   func() time.Time
}

func New() *Ledger {
	return &Ledger{
		stock: map[string]int{},
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// GetStock returns the current quantity, 0 for an unknown product.
func (l *Ledger) GetStock(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[productID]
}

// AdjustStock applies a signed delta under mutual exclusion. Unknown products
// are implicitly created at zero; a negative-going result is clamped at zero
// and the clamped level is what gets recorded.
func (l *Ledger) AdjustStock(productID string, delta int, reason, claimID string) Adjustment {
	l.mu.Lock()
	defer l.mu.Unlock()

	oldStock := l.stock[productID]
	newStock := oldStock + delta
	if newStock < 0 {
		newStock = 0
	}
	l.stock[productID] = newStock

	record := Adjustment{
		ProductID: productID,
		Delta:     delta,
		OldStock:  oldStock,
		NewStock:  newStock,
		Reason:    reason,
		ClaimID:   claimID,
		Timestamp: l.nowFn(),
	}
	l.history = append(l.history, record)
	return record
}

// GetHistory returns an independent copy of the adjustment history, optionally
// filtered to one claim id. Callers never observe later mutation.
func (l *Ledger) GetHistory(claimID string) []Adjustment {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Adjustment, 0, len(l.history))
	for _, record := range l.history {
		if claimID != "" && record.ClaimID != claimID {
			continue
		}
		out = append(out, record)
	}
	return out
}

// ValidateAdjustment reports whether the delta would apply without clamping.
// It is a pure pre-flight check for callers that want to reject rather than
// clamp; AdjustStock itself always clamps.
func (l *Ledger) ValidateAdjustment(productID string, delta int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[productID]+delta >= 0
}

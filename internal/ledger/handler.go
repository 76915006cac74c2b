package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

// EventHandler mutates the ledger from consumed claim events. Delivery is
// at-least-once, so it remembers processed event ids and re-applications of
// the same event become no-ops; the ledger itself stays replay-oblivious.
type EventHandler struct {
	logger *slog.Logger
	ledger *Ledger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewEventHandler(logger *slog.Logger, ledger *Ledger) *EventHandler {
	return &EventHandler{
		logger: logger,
		ledger: ledger,
		seen:   map[string]struct{}{},
	}
}

func (h *EventHandler) markProcessed(eventID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.seen[eventID]; ok {
		return false
	}
	h.seen[eventID] = struct{}{}
	return true
}

// HandleClaimResolved restocks the product referenced by a resolved
// product-defect claim. Claims without a product reference are ignored.
func (h *EventHandler) HandleClaimResolved(ctx context.Context, envelope domain.EventEnvelope) error {
	claim, err := claimFromEnvelope(envelope)
	if err != nil {
		return err
	}
	if claim.ProductID == "" || claim.ClaimType != domain.ClaimTypeProductDefect {
		return nil
	}
	if !h.markProcessed(envelope.EventID) {
		return nil
	}
	record := h.ledger.AdjustStock(claim.ProductID, 1, "defective item returned", claim.ClaimID)
	h.logger.InfoContext(ctx, "stock adjusted from resolved claim",
		"module", "ledger.handler",
		"operation", "handle_claim_resolved",
		"outcome", "success",
		"event_id", envelope.EventID,
		"claim_id", claim.ClaimID,
		"product_id", record.ProductID,
		"old_stock", record.OldStock,
		"new_stock", record.NewStock,
	)
	return nil
}

// Register binds the ledger handlers onto a consumer registry.
func (h *EventHandler) Register(register func(eventType string, handler ports.EventHandler)) {
	register(domain.EventClaimResolved, h.HandleClaimResolved)
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

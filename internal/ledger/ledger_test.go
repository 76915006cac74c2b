package ledger

import (
	"sync"
	"testing"
	"time"
)

func newTestLedger() *Ledger {
	ledger := New()
	ledger.nowFn = func() time.Time { return time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC) }
	return ledger
}

func TestAdjustStockAppliesDelta(t *testing.T) {
	ledger := newTestLedger()

	record := ledger.AdjustStock("prod_1", 45, "initial stock", "")
	if record.OldStock != 0 || record.NewStock != 45 {
		t.Fatalf("initial adjust: old=%d new=%d", record.OldStock, record.NewStock)
	}
	if got := ledger.GetStock("prod_1"); got != 45 {
		t.Fatalf("stock = %d, want 45", got)
	}
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	ledger := newTestLedger()
	ledger.AdjustStock("prod_1", 45, "initial stock", "")

	record := ledger.AdjustStock("prod_1", -100, "write-off", "claim_1")
	if record.OldStock != 45 || record.NewStock != 0 {
		t.Fatalf("clamped adjust: old=%d new=%d, want 45 and 0", record.OldStock, record.NewStock)
	}
	if record.Delta != -100 {
		t.Fatalf("delta = %d, want the requested -100", record.Delta)
	}
	if got := ledger.GetStock("prod_1"); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}
}

func TestGetStockUnknownProduct(t *testing.T) {
	ledger := newTestLedger()
	if got := ledger.GetStock("missing"); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}
}

func TestGetHistoryFiltersByClaim(t *testing.T) {
	ledger := newTestLedger()
	ledger.AdjustStock("prod_1", 5, "restock", "claim_1")
	ledger.AdjustStock("prod_2", 3, "restock", "claim_2")
	ledger.AdjustStock("prod_1", 1, "defective item returned", "claim_1")

	all := ledger.GetHistory("")
	if len(all) != 3 {
		t.Fatalf("full history length = %d, want 3", len(all))
	}
	filtered := ledger.GetHistory("claim_1")
	if len(filtered) != 2 {
		t.Fatalf("filtered history length = %d, want 2", len(filtered))
	}
	for _, record := range filtered {
		if record.ClaimID != "claim_1" {
			t.Fatalf("filtered history contains claim %q", record.ClaimID)
		}
	}

	// The returned slice is a copy.
	all[0].ProductID = "mutated"
	if ledger.GetHistory("")[0].ProductID == "mutated" {
		t.Fatal("GetHistory exposed internal state")
	}
}

func TestValidateAdjustment(t *testing.T) {
	ledger := newTestLedger()
	ledger.AdjustStock("prod_1", 2, "restock", "")

	if !ledger.ValidateAdjustment("prod_1", -2) {
		t.Fatal("delta to exactly zero should validate")
	}
	if ledger.ValidateAdjustment("prod_1", -3) {
		t.Fatal("delta below zero should not validate")
	}
	if !ledger.ValidateAdjustment("missing", 1) {
		t.Fatal("positive delta on unknown product should validate")
	}
}

func TestConcurrentAdjustments(t *testing.T) {
	ledger := newTestLedger()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ledger.AdjustStock("prod_1", 1, "restock", "")
		}()
	}
	wg.Wait()

	if got := ledger.GetStock("prod_1"); got != workers {
		t.Fatalf("stock = %d, want %d", got, workers)
	}
	if got := len(ledger.GetHistory("")); got != workers {
		t.Fatalf("history length = %d, want %d", got, workers)
	}
}

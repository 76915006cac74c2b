package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC)

func newTestClaim(t *testing.T) Claim {
	t.Helper()
	claim, err := NewClaim("claim_1", "cust_1", ClaimTypeProductDefect, "screen cracked", "prod_1", testNow)
	if err != nil {
		t.Fatalf("new claim: %v", err)
	}
	return claim
}

func TestClaimLifecycle(t *testing.T) {
	claim := newTestClaim(t)
	if claim.Status != ClaimStatusCreated {
		t.Fatalf("status = %q, want created", claim.Status)
	}

	if err := claim.AssignToAgent("agent_1", testNow.Add(time.Minute)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if claim.Status != ClaimStatusAssigned || claim.AssignedAgent != "agent_1" {
		t.Fatalf("after assign: status=%q agent=%q", claim.Status, claim.AssignedAgent)
	}

	if err := claim.StartProcessing(testNow.Add(2 * time.Minute)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if claim.Status != ClaimStatusInProgress {
		t.Fatalf("after start: status=%q", claim.Status)
	}

	if err := claim.Resolve("replacement shipped", testNow.Add(3 * time.Minute)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if claim.Status != ClaimStatusResolved || claim.Resolution != "replacement shipped" {
		t.Fatalf("after resolve: status=%q resolution=%q", claim.Status, claim.Resolution)
	}

	if err := claim.Close(testNow.Add(4 * time.Minute)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if claim.Status != ClaimStatusClosed {
		t.Fatalf("after close: status=%q", claim.Status)
	}
	if !claim.UpdatedAt.Equal(testNow.Add(4 * time.Minute)) {
		t.Fatalf("updated at = %v, want close time", claim.UpdatedAt)
	}
}

func TestClaimRejectsOutOfOrderTransitions(t *testing.T) {
	operations := map[string]func(*Claim) error{
		"assign":  func(c *Claim) error { return c.AssignToAgent("agent_1", testNow) },
		"start":   func(c *Claim) error { return c.StartProcessing(testNow) },
		"resolve": func(c *Claim) error { return c.Resolve("done", testNow) },
		"close":   func(c *Claim) error { return c.Close(testNow) },
	}
	allowed := map[string]string{
		ClaimStatusCreated:    "assign",
		ClaimStatusAssigned:   "start",
		ClaimStatusInProgress: "resolve",
		ClaimStatusResolved:   "close",
		ClaimStatusClosed:     "",
	}

	for status, allowedOp := range allowed {
		for name, operation := range operations {
			if name == allowedOp {
				continue
			}
			claim := newTestClaim(t)
			claim.Status = status
			if err := operation(&claim); !errors.Is(err, ErrInvalidStateTransition) {
				t.Errorf("%s from %s: got %v, want ErrInvalidStateTransition", name, status, err)
			}
			if claim.Status != status {
				t.Errorf("%s from %s mutated status to %q", name, status, claim.Status)
			}
		}
	}
}

func TestAssignRequiresAgentID(t *testing.T) {
	claim := newTestClaim(t)
	if err := claim.AssignToAgent("  ", testNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if claim.Status != ClaimStatusCreated {
		t.Fatalf("status changed to %q on rejected assign", claim.Status)
	}
}

func TestResolveRequiresResolution(t *testing.T) {
	claim := newTestClaim(t)
	claim.Status = ClaimStatusInProgress
	if err := claim.Resolve("", testNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestNewClaimValidation(t *testing.T) {
	if _, err := NewClaim("claim_1", "cust_1", "warranty", "desc", "", testNow); !errors.Is(err, ErrUnknownClaimType) {
		t.Fatalf("unknown type: got %v, want ErrUnknownClaimType", err)
	}
	if _, err := NewClaim("claim_1", "cust_1", ClaimTypeBillingError, "  ", "", testNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty description: got %v, want ErrInvalidInput", err)
	}
	if _, err := NewClaim("", "cust_1", ClaimTypeBillingError, "desc", "", testNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty claim id: got %v, want ErrInvalidInput", err)
	}

	claim, err := NewClaim("claim_1", "cust_1", "  Delivery_Issue ", "late package", "", testNow)
	if err != nil {
		t.Fatalf("normalized type rejected: %v", err)
	}
	if claim.ClaimType != ClaimTypeDeliveryIssue {
		t.Fatalf("claim type = %q, want %q", claim.ClaimType, ClaimTypeDeliveryIssue)
	}
}

func TestClaimRecordRoundTrip(t *testing.T) {
	claim := newTestClaim(t)
	if err := claim.AssignToAgent("agent_1", testNow.Add(time.Minute)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	rebuilt, err := ClaimFromRecord(claim.ToRecord())
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if rebuilt != claim {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", rebuilt, claim)
	}
}

func TestClaimFromRecordRejectsUnknownEnums(t *testing.T) {
	base := newTestClaim(t).ToRecord()

	bad := func(key, value string) map[string]string {
		record := make(map[string]string, len(base))
		for k, v := range base {
			record[k] = v
		}
		record[key] = value
		return record
	}

	if _, err := ClaimFromRecord(bad("claim_type", "warranty")); !errors.Is(err, ErrUnknownClaimType) {
		t.Fatalf("bad type: got %v, want ErrUnknownClaimType", err)
	}
	if _, err := ClaimFromRecord(bad("status", "reopened")); !errors.Is(err, ErrUnknownClaimStatus) {
		t.Fatalf("bad status: got %v, want ErrUnknownClaimStatus", err)
	}
	if _, err := ClaimFromRecord(bad("created_at", "yesterday")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad timestamp: got %v, want ErrInvalidInput", err)
	}
	if _, err := ClaimFromRecord(bad("customer_id", "")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing customer: got %v, want ErrInvalidInput", err)
	}
}

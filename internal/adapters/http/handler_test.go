package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborworks/claimstream/internal/adapters/memory"
	"github.com/harborworks/claimstream/internal/application"
	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ledger"
)

type noopPublisher struct{ count int }

func (p *noopPublisher) Publish(_ context.Context, _, _ string, _ map[string]any, _ string) (string, error) {
	p.count++
	return fmt.Sprintf("evt-%d", p.count), nil
}

func newTestRouters(t *testing.T) (http.Handler, http.Handler, *ledger.Ledger) {
	t.Helper()
	service := application.NewService(application.Dependencies{
		Claims:    memory.NewClaimRepository(),
		Publisher: &noopPublisher{},
	})
	inventory := ledger.New()
	handler := NewHandler(service, inventory)
	return NewRouter(handler), NewInventoryRouter(handler), inventory
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var wrapper struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &wrapper); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if wrapper.Status != "success" {
		t.Fatalf("response status = %q, body = %s", wrapper.Status, rec.Body.String())
	}
	if err := json.Unmarshal(wrapper.Data, dst); err != nil {
		t.Fatalf("decode response data: %v", err)
	}
}

func createClaimViaAPI(t *testing.T, router http.Handler) domain.Claim {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/claims/v1/claims", map[string]string{
		"customer_id": "cust_1",
		"claim_type":  "product_defect",
		"description": "screen cracked",
		"product_id":  "prod_1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var claim domain.Claim
	decodeData(t, rec, &claim)
	return claim
}

func TestCreateAndGetClaim(t *testing.T) {
	router, _, _ := newTestRouters(t)
	claim := createClaimViaAPI(t, router)

	rec := doJSON(t, router, http.MethodGet, "/claims/v1/claims/"+claim.ClaimID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var fetched domain.Claim
	decodeData(t, rec, &fetched)
	if fetched.ClaimID != claim.ClaimID || fetched.Status != domain.ClaimStatusCreated {
		t.Fatalf("unexpected claim: %+v", fetched)
	}
}

func TestCreateClaimRejectsUnknownFields(t *testing.T) {
	router, _, _ := newTestRouters(t)
	rec := doJSON(t, router, http.MethodPost, "/claims/v1/claims", map[string]string{
		"customer_id": "cust_1",
		"claim_type":  "product_defect",
		"description": "screen cracked",
		"severity":    "high",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetClaimNotFound(t *testing.T) {
	router, _, _ := newTestRouters(t)
	rec := doJSON(t, router, http.MethodGet, "/claims/v1/claims/claim_missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var apiErr apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Fatalf("error code = %q, want NOT_FOUND", apiErr.Code)
	}
}

func TestTransitionEndpointsEnforceOrder(t *testing.T) {
	router, _, _ := newTestRouters(t)
	claim := createClaimViaAPI(t, router)
	base := "/claims/v1/claims/" + claim.ClaimID

	// Resolving a freshly created claim skips two states.
	rec := doJSON(t, router, http.MethodPost, base+"/resolve", map[string]string{"resolution": "done"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("early resolve status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/assign", map[string]string{"agent_id": "agent_1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, base+"/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, base+"/resolve", map[string]string{"resolution": "replacement shipped"})
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, base+"/close", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var closed domain.Claim
	decodeData(t, rec, &closed)
	if closed.Status != domain.ClaimStatusClosed {
		t.Fatalf("status = %q, want closed", closed.Status)
	}
}

func TestInventoryEndpoints(t *testing.T) {
	_, inventoryRouter, inventory := newTestRouters(t)
	inventory.AdjustStock("prod_1", 3, "restock", "")
	inventory.AdjustStock("prod_1", 1, "defective item returned", "claim_1")
	inventory.AdjustStock("prod_2", 7, "restock", "")

	rec := doJSON(t, inventoryRouter, http.MethodGet, "/inventory/v1/inventory/prod_1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stock status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var stock application.StockResponse
	decodeData(t, rec, &stock)
	if stock.Stock != 4 {
		t.Fatalf("stock = %d, want 4", stock.Stock)
	}

	rec = doJSON(t, inventoryRouter, http.MethodGet, "/inventory/v1/inventory/prod_1/history?claim_id=claim_1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var history application.StockHistoryResponse
	decodeData(t, rec, &history)
	if len(history.Adjustments) != 1 || history.Adjustments[0].ClaimID != "claim_1" {
		t.Fatalf("unexpected history: %+v", history.Adjustments)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _, _ := newTestRouters(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("request id header = %q, want req-42", got)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harborworks/claimstream/internal/application"
	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ledger"
)

// Handler is the HTTP adapter entrypoint for claims and inventory reads.
// Keeping only application dependencies here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
	ledger  *ledger.Ledger
}

func NewHandler(service *application.Service, inventory *ledger.Ledger) *Handler {
	return &Handler{service: service, ledger: inventory}
}

func decodeBody(r *http.Request, dst any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (h *Handler) writeMappedError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	statusCode, code, message := mapDomainError(err)
	logHTTPOperationError(r.Context(), operation, statusCode, code, message, err)
	writeError(w, statusCode, code, message)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createClaim(w http.ResponseWriter, r *http.Request) {
	var req application.CreateClaimRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeMappedError(w, r, "create_claim", err)
		return
	}
	claim, err := h.service.CreateClaim(r.Context(), req)
	if err != nil {
		h.writeMappedError(w, r, "create_claim", err)
		return
	}
	writeSuccess(w, http.StatusCreated, claim)
}

func (h *Handler) getClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.GetClaim(r.Context(), chi.URLParam(r, "claim_id"))
	if err != nil {
		h.writeMappedError(w, r, "get_claim", err)
		return
	}
	writeSuccess(w, http.StatusOK, claim)
}

func (h *Handler) listClaims(w http.ResponseWriter, r *http.Request) {
	query := application.ListClaimsQuery{
		CustomerID: r.URL.Query().Get("customer_id"),
		Status:     r.URL.Query().Get("status"),
		Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
		Offset:     parseIntDefault(r.URL.Query().Get("offset"), 0),
	}
	claims, err := h.service.ListClaims(r.Context(), query)
	if err != nil {
		h.writeMappedError(w, r, "list_claims", err)
		return
	}
	writeSuccess(w, http.StatusOK, claims)
}

func (h *Handler) assignClaim(w http.ResponseWriter, r *http.Request) {
	var req application.AssignClaimRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeMappedError(w, r, "assign_claim", err)
		return
	}
	req.ClaimID = chi.URLParam(r, "claim_id")
	claim, err := h.service.AssignClaim(r.Context(), req)
	if err != nil {
		h.writeMappedError(w, r, "assign_claim", err)
		return
	}
	writeSuccess(w, http.StatusOK, claim)
}

func (h *Handler) startClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.StartProcessing(r.Context(), chi.URLParam(r, "claim_id"), r.URL.Query().Get("correlation_id"))
	if err != nil {
		h.writeMappedError(w, r, "start_claim", err)
		return
	}
	writeSuccess(w, http.StatusOK, claim)
}

func (h *Handler) resolveClaim(w http.ResponseWriter, r *http.Request) {
	var req application.ResolveClaimRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeMappedError(w, r, "resolve_claim", err)
		return
	}
	req.ClaimID = chi.URLParam(r, "claim_id")
	claim, err := h.service.ResolveClaim(r.Context(), req)
	if err != nil {
		h.writeMappedError(w, r, "resolve_claim", err)
		return
	}
	writeSuccess(w, http.StatusOK, claim)
}

func (h *Handler) closeClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.CloseClaim(r.Context(), chi.URLParam(r, "claim_id"), r.URL.Query().Get("correlation_id"))
	if err != nil {
		h.writeMappedError(w, r, "close_claim", err)
		return
	}
	writeSuccess(w, http.StatusOK, claim)
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	writeSuccess(w, http.StatusOK, application.StockResponse{
		ProductID: productID,
		Stock:     h.ledger.GetStock(productID),
	})
}

func (h *Handler) getStockHistory(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	history := h.ledger.GetHistory(r.URL.Query().Get("claim_id"))
	filtered := make([]ledger.Adjustment, 0, len(history))
	for _, record := range history {
		if record.ProductID == productID {
			filtered = append(filtered, record)
		}
	}
	writeSuccess(w, http.StatusOK, application.StockHistoryResponse{
		ProductID:   productID,
		Adjustments: filtered,
	})
}

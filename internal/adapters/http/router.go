package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the claims HTTP routes served by the API process.
// Centralizing routes here keeps error and logging behavior consistent across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)

	r.Route("/claims/v1", func(r chi.Router) {
		r.Post("/claims", handler.createClaim)
		r.Get("/claims", handler.listClaims)
		r.Get("/claims/{claim_id}", handler.getClaim)
		r.Post("/claims/{claim_id}/assign", handler.assignClaim)
		r.Post("/claims/{claim_id}/start", handler.startClaim)
		r.Post("/claims/{claim_id}/resolve", handler.resolveClaim)
		r.Post("/claims/{claim_id}/close", handler.closeClaim)
	})

	return r
}

// NewInventoryRouter serves the ledger read endpoints from the worker process
// that owns the ledger; the API process has no view of that state.
func NewInventoryRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)

	r.Route("/inventory/v1", func(r chi.Router) {
		r.Get("/inventory/{product_id}", handler.getStock)
		r.Get("/inventory/{product_id}/history", handler.getStockHistory)
	})

	return r
}

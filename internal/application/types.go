package application

import "github.com/harborworks/claimstream/internal/ledger"

type CreateClaimRequest struct {
	CustomerID    string `json:"customer_id"`
	ClaimType     string `json:"claim_type"`
	Description   string `json:"description"`
	ProductID     string `json:"product_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type AssignClaimRequest struct {
	ClaimID       string `json:"-"`
	AgentID       string `json:"agent_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type ResolveClaimRequest struct {
	ClaimID       string `json:"-"`
	Resolution    string `json:"resolution"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type ListClaimsQuery struct {
	CustomerID string
	Status     string
	Limit      int
	Offset     int
}

type StockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

type StockHistoryResponse struct {
	ProductID   string              `json:"product_id"`
	Adjustments []ledger.Adjustment `json:"adjustments"`
}

package domain

import (
	"strings"
	"time"
)

const (
	ClaimTypeProductDefect    = "product_defect"
	ClaimTypeDeliveryIssue    = "delivery_issue"
	ClaimTypeBillingError     = "billing_error"
	ClaimTypeServiceComplaint = "service_complaint"
)

const (
	ClaimStatusCreated    = "created"
	ClaimStatusAssigned   = "assigned"
	ClaimStatusInProgress = "in_progress"
	ClaimStatusResolved   = "resolved"
	ClaimStatusClosed     = "closed"
)

// Claim is the aggregate enforcing the claim lifecycle. Its status only moves
// forward through the transition table below; mutations happen through the
// guarded operations and nothing else.
type Claim struct {
	ClaimID       string    `json:"claim_id"`
	CustomerID    string    `json:"customer_id"`
	ClaimType     string    `json:"claim_type"`
	Description   string    `json:"description"`
	ProductID     string    `json:"product_id,omitempty"`
	Status        string    `json:"status"`
	AssignedAgent string    `json:"assigned_agent,omitempty"`
	Resolution    string    `json:"resolution,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// claimTransitions is the closed from-status -> operation -> to-status table.
// Assignment is deliberately restricted to freshly created claims; the looser
// historical behavior silently reset in-flight claims back to assigned.
var claimTransitions = map[string]map[string]string{
	ClaimStatusCreated:    {"assign": ClaimStatusAssigned},
	ClaimStatusAssigned:   {"start": ClaimStatusInProgress},
	ClaimStatusInProgress: {"resolve": ClaimStatusResolved},
	ClaimStatusResolved:   {"close": ClaimStatusClosed},
}

func NormalizeClaimType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ClaimTypeProductDefect:
		return ClaimTypeProductDefect
	case ClaimTypeDeliveryIssue:
		return ClaimTypeDeliveryIssue
	case ClaimTypeBillingError:
		return ClaimTypeBillingError
	case ClaimTypeServiceComplaint:
		return ClaimTypeServiceComplaint
	default:
		return ""
	}
}

func validClaimStatus(status string) bool {
	switch status {
	case ClaimStatusCreated, ClaimStatusAssigned, ClaimStatusInProgress, ClaimStatusResolved, ClaimStatusClosed:
		return true
	default:
		return false
	}
}

// NewClaim constructs a claim in created status.
func NewClaim(claimID, customerID, claimType, description, productID string, now time.Time) (Claim, error) {
	if strings.TrimSpace(claimID) == "" || strings.TrimSpace(customerID) == "" {
		return Claim{}, ErrInvalidInput
	}
	normalized := NormalizeClaimType(claimType)
	if normalized == "" {
		return Claim{}, ErrUnknownClaimType
	}
	if strings.TrimSpace(description) == "" {
		return Claim{}, ErrInvalidInput
	}
	now = now.UTC()
	return Claim{
		ClaimID:     claimID,
		CustomerID:  customerID,
		ClaimType:   normalized,
		Description: description,
		ProductID:   strings.TrimSpace(productID),
		Status:      ClaimStatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Claim) transition(operation string, now time.Time) error {
	next, ok := claimTransitions[c.Status][operation]
	if !ok {
		return ErrInvalidStateTransition
	}
	c.Status = next
	c.UpdatedAt = now.UTC()
	return nil
}

// AssignToAgent moves a created claim to assigned and records the agent.
func (c *Claim) AssignToAgent(agentID string, now time.Time) error {
	if strings.TrimSpace(agentID) == "" {
		return ErrInvalidInput
	}
	if err := c.transition("assign", now); err != nil {
		return err
	}
	c.AssignedAgent = agentID
	return nil
}

// StartProcessing moves an assigned claim to in_progress.
func (c *Claim) StartProcessing(now time.Time) error {
	return c.transition("start", now)
}

// Resolve records the resolution and moves an in-progress claim to resolved.
func (c *Claim) Resolve(resolution string, now time.Time) error {
	if strings.TrimSpace(resolution) == "" {
		return ErrInvalidInput
	}
	if err := c.transition("resolve", now); err != nil {
		return err
	}
	c.Resolution = resolution
	return nil
}

// Close moves a resolved claim to the terminal closed status.
func (c *Claim) Close(now time.Time) error {
	return c.transition("close", now)
}

// ToRecord flattens the claim to string key/values for event payloads and
// stream transport. Timestamps are RFC3339 UTC.
func (c Claim) ToRecord() map[string]string {
	return map[string]string{
		"claim_id":       c.ClaimID,
		"customer_id":    c.CustomerID,
		"claim_type":     c.ClaimType,
		"description":    c.Description,
		"product_id":     c.ProductID,
		"status":         c.Status,
		"assigned_agent": c.AssignedAgent,
		"resolution":     c.Resolution,
		"created_at":     c.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":     c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ClaimFromRecord rebuilds a claim from its flat representation. Unknown enum
// tags are rejected rather than passed through.
func ClaimFromRecord(record map[string]string) (Claim, error) {
	claim := Claim{
		ClaimID:       record["claim_id"],
		CustomerID:    record["customer_id"],
		ClaimType:     record["claim_type"],
		Description:   record["description"],
		ProductID:     record["product_id"],
		Status:        record["status"],
		AssignedAgent: record["assigned_agent"],
		Resolution:    record["resolution"],
	}
	if claim.ClaimID == "" || claim.CustomerID == "" {
		return Claim{}, ErrInvalidInput
	}
	if NormalizeClaimType(claim.ClaimType) != claim.ClaimType || claim.ClaimType == "" {
		return Claim{}, ErrUnknownClaimType
	}
	if !validClaimStatus(claim.Status) {
		return Claim{}, ErrUnknownClaimStatus
	}
	createdAt, err := time.Parse(time.RFC3339Nano, record["created_at"])
	if err != nil {
		return Claim{}, ErrInvalidInput
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, record["updated_at"])
	if err != nil {
		return Claim{}, ErrInvalidInput
	}
	claim.CreatedAt = createdAt.UTC()
	claim.UpdatedAt = updatedAt.UTC()
	return claim, nil
}

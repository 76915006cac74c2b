package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/ports"
)

// Service implements the claims use-cases: every mutation loads the
// aggregate, runs the guarded transition, persists the result and publishes
// the fact. Publishing happens after the write; a publish failure is
// surfaced to the caller while the state change stays durable.
type Service struct {
	logger    *slog.Logger
	claims    ports.ClaimRepository
	publisher ports.EventPublisher
	nowFn     func() time.Time
	newID     func() string
}

type Dependencies struct {
	Logger    *slog.Logger
	Claims    ports.ClaimRepository
	Publisher ports.EventPublisher
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		claims:    deps.Claims,
		publisher: deps.Publisher,
		nowFn:     func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *Service) publishClaimEvent(ctx context.Context, eventType string, claim domain.Claim, correlationID string) error {
	record := claim.ToRecord()
	data := make(map[string]any, len(record))
	for key, value := range record {
		data[key] = value
	}
	if _, err := s.publisher.Publish(ctx, eventType, claim.ClaimID, data, correlationID); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func (s *Service) CreateClaim(ctx context.Context, req CreateClaimRequest) (domain.Claim, error) {
	claim, err := domain.NewClaim("claim_"+s.newID(), req.CustomerID, req.ClaimType, req.Description, req.ProductID, s.nowFn())
	if err != nil {
		return domain.Claim{}, err
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return domain.Claim{}, err
	}
	if err := s.publishClaimEvent(ctx, domain.EventClaimCreated, claim, req.CorrelationID); err != nil {
		return domain.Claim{}, err
	}
	s.logger.InfoContext(ctx, "claim created",
		"module", "application",
		"operation", "create_claim",
		"outcome", "success",
		"claim_id", claim.ClaimID,
		"claim_type", claim.ClaimType,
	)
	return claim, nil
}

// mutateClaim loads, applies the transition and persists. The transition
// closure mutates the claim in place and returns the event type to publish.
func (s *Service) mutateClaim(ctx context.Context, claimID, correlationID string, apply func(*domain.Claim) (string, error)) (domain.Claim, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return domain.Claim{}, err
	}
	eventType, err := apply(&claim)
	if err != nil {
		return domain.Claim{}, err
	}
	if err := s.claims.Update(ctx, claim); err != nil {
		return domain.Claim{}, err
	}
	if err := s.publishClaimEvent(ctx, eventType, claim, correlationID); err != nil {
		return domain.Claim{}, err
	}
	s.logger.InfoContext(ctx, "claim transitioned",
		"module", "application",
		"operation", "mutate_claim",
		"outcome", "success",
		"claim_id", claim.ClaimID,
		"status", claim.Status,
		"event_type", eventType,
	)
	return claim, nil
}

func (s *Service) AssignClaim(ctx context.Context, req AssignClaimRequest) (domain.Claim, error) {
	return s.mutateClaim(ctx, req.ClaimID, req.CorrelationID, func(claim *domain.Claim) (string, error) {
		if err := claim.AssignToAgent(req.AgentID, s.nowFn()); err != nil {
			return "", err
		}
		return domain.EventClaimAssigned, nil
	})
}

func (s *Service) StartProcessing(ctx context.Context, claimID, correlationID string) (domain.Claim, error) {
	return s.mutateClaim(ctx, claimID, correlationID, func(claim *domain.Claim) (string, error) {
		if err := claim.StartProcessing(s.nowFn()); err != nil {
			return "", err
		}
		return domain.EventClaimStarted, nil
	})
}

func (s *Service) ResolveClaim(ctx context.Context, req ResolveClaimRequest) (domain.Claim, error) {
	return s.mutateClaim(ctx, req.ClaimID, req.CorrelationID, func(claim *domain.Claim) (string, error) {
		if err := claim.Resolve(req.Resolution, s.nowFn()); err != nil {
			return "", err
		}
		return domain.EventClaimResolved, nil
	})
}

func (s *Service) CloseClaim(ctx context.Context, claimID, correlationID string) (domain.Claim, error) {
	return s.mutateClaim(ctx, claimID, correlationID, func(claim *domain.Claim) (string, error) {
		if err := claim.Close(s.nowFn()); err != nil {
			return "", err
		}
		return domain.EventClaimClosed, nil
	})
}

func (s *Service) GetClaim(ctx context.Context, claimID string) (domain.Claim, error) {
	return s.claims.GetByID(ctx, claimID)
}

func (s *Service) ListClaims(ctx context.Context, query ListClaimsQuery) ([]domain.Claim, error) {
	return s.claims.List(ctx, query.CustomerID, query.Status, query.Limit, query.Offset)
}

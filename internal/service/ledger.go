package service

import (
	"context"
	"strings"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LedgerService implements fund/transaction/donor/pledge bookkeeping.
// Mutations invalidate the church's cached overview.
type LedgerService struct {
	store   port.LedgerStore
	cache   port.Cache[[]domain.FundOverview]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLedgerService creates the bookkeeping service.
func NewLedgerService(store port.LedgerStore, cache port.Cache[[]domain.FundOverview], metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// ============================================================
// Funds
// ============================================================

// ListFunds returns a church's funds.
func (s *LedgerService) ListFunds(ctx context.Context, churchID string, activeOnly bool) ([]domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.ListFunds")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	return s.store.ListFunds(ctx, churchID, activeOnly)
}

// GetFund returns a single fund.
func (s *LedgerService) GetFund(ctx context.Context, churchID, fundID string) (*domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.GetFund")
	defer span.End()

	return s.store.GetFund(ctx, churchID, fundID)
}

// CreateFund validates and creates a fund.
func (s *LedgerService) CreateFund(ctx context.Context, churchID string, req *domain.CreateFundRequest) (*domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.CreateFund")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "must not be empty"}
	}
	if !domain.ValidFundType(req.Type) {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be general, restricted or designated"}
	}
	if req.FundraisingTarget != nil && *req.FundraisingTarget < 0 {
		return nil, &domain.ErrValidation{Field: "fundraising_target", Message: "must not be negative"}
	}

	fund := &domain.Fund{
		ID:                uuid.NewString(),
		ChurchID:          churchID,
		Name:              strings.TrimSpace(req.Name),
		Type:              req.Type,
		Description:       req.Description,
		Balance:           req.OpeningBalance,
		IsActive:          true,
		IsFundraising:     req.IsFundraising,
		FundraisingTarget: req.FundraisingTarget,
		CreatedAt:         time.Now().UTC(),
	}

	created, err := s.store.CreateFund(ctx, fund)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(churchID)
	s.logger.Info("fund created",
		zap.String("church_id", churchID),
		zap.String("fund_id", created.ID),
		zap.String("type", created.Type),
	)
	return created, nil
}

// UpdateFund applies the non-nil fields of the request.
func (s *LedgerService) UpdateFund(ctx context.Context, churchID, fundID string, req *domain.UpdateFundRequest) (*domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.UpdateFund")
	defer span.End()

	if _, err := s.store.GetFund(ctx, churchID, fundID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "must not be empty"}
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsFundraising != nil {
		updates["is_fundraising"] = *req.IsFundraising
	}
	if req.FundraisingTarget != nil {
		if *req.FundraisingTarget < 0 {
			return nil, &domain.ErrValidation{Field: "fundraising_target", Message: "must not be negative"}
		}
		updates["fundraising_target"] = *req.FundraisingTarget
	}
	if len(updates) == 0 {
		return s.store.GetFund(ctx, churchID, fundID)
	}

	if err := s.store.UpdateFund(ctx, fundID, updates); err != nil {
		return nil, err
	}

	s.cache.Delete(churchID)
	return s.store.GetFund(ctx, churchID, fundID)
}

// DeactivateFund soft-deletes a fund. Its transactions stay in the log.
func (s *LedgerService) DeactivateFund(ctx context.Context, churchID, fundID string) error {
	ctx, span := tracer.Start(ctx, "LedgerService.DeactivateFund")
	defer span.End()

	if _, err := s.store.GetFund(ctx, churchID, fundID); err != nil {
		return err
	}
	if err := s.store.UpdateFund(ctx, fundID, map[string]any{"is_active": false}); err != nil {
		return err
	}

	s.cache.Delete(churchID)
	s.logger.Info("fund deactivated",
		zap.String("church_id", churchID),
		zap.String("fund_id", fundID),
	)
	return nil
}

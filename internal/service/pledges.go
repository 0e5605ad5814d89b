package service

import (
	"context"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Pledges
// ============================================================

// ListPledges returns a church's pledges, pledge-date ascending.
func (s *LedgerService) ListPledges(ctx context.Context, churchID string) ([]domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.ListPledges")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	return s.store.ListPledges(ctx, churchID)
}

// CreatePledge validates and creates a pledge against a fundraising fund.
func (s *LedgerService) CreatePledge(ctx context.Context, churchID string, req *domain.CreatePledgeRequest) (*domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.CreatePledge")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("fund.id", req.FundID),
	)

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	fund, err := s.store.GetFund(ctx, churchID, req.FundID)
	if err != nil {
		return nil, err
	}
	if !fund.IsFundraising {
		return nil, &domain.ErrValidation{Field: "fund_id", Message: "fund is not fundraising"}
	}
	if _, err := s.store.GetDonor(ctx, churchID, req.DonorID); err != nil {
		return nil, err
	}

	pledgedAt := req.PledgedAt
	if pledgedAt == "" {
		pledgedAt = time.Now().UTC().Format("2006-01-02")
	} else {
		var ok bool
		pledgedAt, ok = domain.NormalizeDate(pledgedAt)
		if !ok {
			return nil, &domain.ErrValidation{Field: "pledged_at", Message: "unrecognized date format"}
		}
	}

	dueDate := req.DueDate
	if dueDate != "" {
		var ok bool
		dueDate, ok = domain.NormalizeDate(dueDate)
		if !ok {
			return nil, &domain.ErrValidation{Field: "due_date", Message: "unrecognized date format"}
		}
	}

	pledge := &domain.Pledge{
		ID:        uuid.NewString(),
		ChurchID:  churchID,
		FundID:    req.FundID,
		DonorID:   req.DonorID,
		Amount:    req.Amount,
		PledgedAt: pledgedAt,
		DueDate:   dueDate,
		Status:    domain.PledgeOpen,
		Notes:     req.Notes,
	}

	created, err := s.store.CreatePledge(ctx, pledge)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(churchID)
	s.logger.Info("pledge created",
		zap.String("church_id", churchID),
		zap.String("pledge_id", created.ID),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}

// UpdatePledgeStatus sets the stored status of a pledge. The overview's
// computed status may still override it (fulfillment), except cancellation.
func (s *LedgerService) UpdatePledgeStatus(ctx context.Context, churchID, pledgeID, status string) (*domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.UpdatePledgeStatus")
	defer span.End()
	span.SetAttributes(attribute.String("pledge.id", pledgeID))

	if !domain.ValidPledgeStatus(status) {
		return nil, &domain.ErrValidation{Field: "status", Message: "must be open, fulfilled or cancelled"}
	}
	if _, err := s.store.GetPledge(ctx, churchID, pledgeID); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePledgeStatus(ctx, pledgeID, status); err != nil {
		return nil, err
	}

	s.cache.Delete(churchID)
	return s.store.GetPledge(ctx, churchID, pledgeID)
}

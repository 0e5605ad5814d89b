package service

import (
	"context"
	"strings"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Donors
// ============================================================

// ListDonors returns a church's donors.
func (s *LedgerService) ListDonors(ctx context.Context, churchID string, activeOnly bool) ([]domain.Donor, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.ListDonors")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	return s.store.ListDonors(ctx, churchID, activeOnly)
}

// GetDonor returns a single donor.
func (s *LedgerService) GetDonor(ctx context.Context, churchID, donorID string) (*domain.Donor, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.GetDonor")
	defer span.End()

	return s.store.GetDonor(ctx, churchID, donorID)
}

// CreateDonor validates and creates a donor.
func (s *LedgerService) CreateDonor(ctx context.Context, churchID string, req *domain.CreateDonorRequest) (*domain.Donor, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.CreateDonor")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "must not be empty"}
	}

	donor := &domain.Donor{
		ID:              uuid.NewString(),
		ChurchID:        churchID,
		Name:            strings.TrimSpace(req.Name),
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		GiftAidEligible: req.GiftAidEligible,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}

	created, err := s.store.CreateDonor(ctx, donor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("donor created",
		zap.String("church_id", churchID),
		zap.String("donor_id", created.ID),
	)
	return created, nil
}

// UpdateDonor applies the non-nil fields of the request.
func (s *LedgerService) UpdateDonor(ctx context.Context, churchID, donorID string, req *domain.UpdateDonorRequest) (*domain.Donor, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.UpdateDonor")
	defer span.End()

	if _, err := s.store.GetDonor(ctx, churchID, donorID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "must not be empty"}
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.GiftAidEligible != nil {
		updates["gift_aid_eligible"] = *req.GiftAidEligible
	}
	if len(updates) == 0 {
		return s.store.GetDonor(ctx, churchID, donorID)
	}

	if err := s.store.UpdateDonor(ctx, donorID, updates); err != nil {
		return nil, err
	}
	return s.store.GetDonor(ctx, churchID, donorID)
}

// DeactivateDonor soft-deletes a donor. Historical transactions keep the
// reference and still resolve for reporting.
func (s *LedgerService) DeactivateDonor(ctx context.Context, churchID, donorID string) error {
	ctx, span := tracer.Start(ctx, "LedgerService.DeactivateDonor")
	defer span.End()

	if _, err := s.store.GetDonor(ctx, churchID, donorID); err != nil {
		return err
	}
	if err := s.store.UpdateDonor(ctx, donorID, map[string]any{"is_active": false}); err != nil {
		return err
	}

	s.logger.Info("donor deactivated",
		zap.String("church_id", churchID),
		zap.String("donor_id", donorID),
	)
	return nil
}

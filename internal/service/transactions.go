package service

import (
	"context"

	"github.com/stewardapp/steward-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions
// ============================================================

// ListTransactions returns a church's transactions, date ascending.
func (s *LedgerService) ListTransactions(ctx context.Context, churchID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	return s.store.ListTransactions(ctx, churchID, filter)
}

// GetTransaction returns a single transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, churchID, transactionID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.GetTransaction")
	defer span.End()

	return s.store.GetTransaction(ctx, churchID, transactionID)
}

// CreateTransaction validates, persists and applies the entry's delta to the
// fund's cached balance. The two writes are separate calls; the
// reconciliation sweep catches drift if the second one is lost.
func (s *LedgerService) CreateTransaction(ctx context.Context, churchID string, req *domain.CreateTransactionRequest) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("fund.id", req.FundID),
	)

	if req.Type != domain.TransactionIncome && req.Type != domain.TransactionExpense {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	date, ok := domain.NormalizeDate(req.Date)
	if !ok {
		return nil, &domain.ErrValidation{Field: "date", Message: "unrecognized date format"}
	}

	fund, err := s.store.GetFund(ctx, churchID, req.FundID)
	if err != nil {
		return nil, err
	}
	if !fund.IsActive {
		return nil, &domain.ErrValidation{Field: "fund_id", Message: "fund is not active"}
	}

	// Restricted money may not go negative.
	if req.Type == domain.TransactionExpense && fund.Type == domain.FundTypeRestricted && req.Amount > fund.Balance {
		return nil, &domain.ErrInsufficientFunds{Available: fund.Balance, Required: req.Amount}
	}

	if req.DonorID != "" {
		if _, err := s.store.GetDonor(ctx, churchID, req.DonorID); err != nil {
			return nil, err
		}
	}

	tx := &domain.Transaction{
		ID:          uuid.NewString(),
		ChurchID:    churchID,
		FundID:      req.FundID,
		DonorID:     req.DonorID,
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateFundBalance(ctx, req.FundID, created.Delta()); err != nil {
		s.logger.Error("transaction stored but balance update failed",
			zap.String("transaction_id", created.ID),
			zap.String("fund_id", req.FundID),
			zap.Error(err),
		)
		return nil, err
	}

	s.cache.Delete(churchID)
	s.logger.Info("transaction created",
		zap.String("church_id", churchID),
		zap.String("transaction_id", created.ID),
		zap.String("type", created.Type),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}

// DeleteTransaction removes an entry and reverses its balance effect.
func (s *LedgerService) DeleteTransaction(ctx context.Context, churchID, transactionID string) error {
	ctx, span := tracer.Start(ctx, "LedgerService.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", transactionID))

	tx, err := s.store.GetTransaction(ctx, churchID, transactionID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTransaction(ctx, churchID, transactionID); err != nil {
		return err
	}

	if _, err := s.store.UpdateFundBalance(ctx, tx.FundID, -tx.Delta()); err != nil {
		s.logger.Error("transaction deleted but balance reversal failed",
			zap.String("transaction_id", transactionID),
			zap.String("fund_id", tx.FundID),
			zap.Error(err),
		)
		return err
	}

	s.cache.Delete(churchID)
	s.logger.Info("transaction deleted",
		zap.String("church_id", churchID),
		zap.String("transaction_id", transactionID),
	)
	return nil
}

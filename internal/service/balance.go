package service

import (
	"context"
	"math"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/port"

	"go.uber.org/zap"
)

// BalanceTolerance is the maximum acceptable difference between a fund's
// cached balance and the total derived from its transactions, in currency
// units. Anything above it counts as drift.
const BalanceTolerance = 0.01

// ComputeBalance derives a fund's balance afresh from its transaction set.
func ComputeBalance(transactions []domain.Transaction) float64 {
	var total float64
	for i := range transactions {
		total += transactions[i].Delta()
	}
	return total
}

// OpeningBalanceAsOf sums deltas strictly before the given canonical date.
func OpeningBalanceAsOf(transactions []domain.Transaction, date string) float64 {
	var total float64
	for i := range transactions {
		if transactions[i].Date < date {
			total += transactions[i].Delta()
		}
	}
	return total
}

// LedgerFromOpening replays transactions against a supplied opening balance.
func LedgerFromOpening(opening float64, transactions []domain.Transaction) []domain.LedgerRow {
	return buildLedger(opening, transactions)
}

// BalanceService exposes the integrity check over the store.
type BalanceService struct {
	store  port.LedgerStore
	logger *zap.Logger
}

// NewBalanceService creates a balance service.
func NewBalanceService(store port.LedgerStore, logger *zap.Logger) *BalanceService {
	return &BalanceService{store: store, logger: logger}
}

// FundLedger returns one fund's chronological ledger with running balance,
// back-computed from the cached balance the same way the overview does it.
func (s *BalanceService) FundLedger(ctx context.Context, churchID, fundID string) ([]domain.LedgerRow, error) {
	ctx, span := tracer.Start(ctx, "BalanceService.FundLedger")
	defer span.End()

	fund, err := s.store.GetFund(ctx, churchID, fundID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.store.ListTransactions(ctx, churchID, domain.TransactionFilter{FundID: fundID})
	if err != nil {
		return nil, err
	}

	opening := fund.Balance - ComputeBalance(transactions)
	return LedgerFromOpening(opening, transactions), nil
}

// CheckBalanceIntegrity compares every active fund's cached balance with the
// total recomputed from its transaction log. A lightweight consistency check,
// not a transactional guarantee: balance updates and transaction inserts are
// separate writes and can diverge between them.
func (s *BalanceService) CheckBalanceIntegrity(ctx context.Context, churchID string) ([]domain.BalanceIntegrity, error) {
	ctx, span := tracer.Start(ctx, "BalanceService.CheckBalanceIntegrity")
	defer span.End()

	funds, err := s.store.ListFunds(ctx, churchID, true)
	if err != nil {
		return nil, err
	}

	results := make([]domain.BalanceIntegrity, 0, len(funds))
	for _, fund := range funds {
		transactions, err := s.store.ListTransactions(ctx, churchID, domain.TransactionFilter{FundID: fund.ID})
		if err != nil {
			return nil, err
		}

		computed := ComputeBalance(transactions)
		drift := fund.Balance - computed
		consistent := math.Abs(drift) <= BalanceTolerance
		if !consistent {
			s.logger.Warn("balance drift detected",
				zap.String("church_id", churchID),
				zap.String("fund_id", fund.ID),
				zap.Float64("cached", fund.Balance),
				zap.Float64("computed", computed),
			)
		}

		results = append(results, domain.BalanceIntegrity{
			FundID:          fund.ID,
			FundName:        fund.Name,
			CachedBalance:   fund.Balance,
			ComputedBalance: computed,
			Drift:           drift,
			Consistent:      consistent,
		})
	}
	return results, nil
}

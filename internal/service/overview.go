package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

// OverviewService assembles the per-fund financial overview: running-balance
// ledger, income/expense totals and the fundraising supporter breakdown.
// It only reads; the result is a pure function of the stored records.
type OverviewService struct {
	store          port.LedgerStore
	cache          port.Cache[[]domain.FundOverview]
	metrics        *observability.Metrics
	logger         *zap.Logger
	maxConcurrency int
}

// NewOverviewService creates the overview aggregator.
func NewOverviewService(store port.LedgerStore, cache port.Cache[[]domain.FundOverview], metrics *observability.Metrics, logger *zap.Logger, maxConcurrency int) *OverviewService {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &OverviewService{
		store:          store,
		cache:          cache,
		metrics:        metrics,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// donorGifts tracks one donor's income transactions to one fund.
//
// lastDate is the donor's latest gift overall and feeds the
// donors-without-pledge rows. The pledge block ignores it and recomputes
// its own last date from gifts, restricted to gifts on/after pledgedAt.
// The two fields answer different questions; neither replaces the other.
type donorGifts struct {
	total    float64
	lastDate string
	gifts    []gift
}

type gift struct {
	date   string
	amount float64
}

// fundAccumulator is the per-fund fold state.
type fundAccumulator struct {
	incomeTotal         float64
	expenseTotal        float64
	deltaSum            float64
	lastTransactionDate string
	transactions        []domain.Transaction
	donations           map[string]*donorGifts // donorID -> gifts to this fund
}

// FundOverviews returns one overview per active fund of the church.
//
// Missing references degrade, never fail: a transaction pointing at a fund
// outside the active set is dropped, an unresolvable donor is labeled
// "Unknown donor". Orphaned historical data must not break the report.
func (s *OverviewService) FundOverviews(ctx context.Context, churchID string) ([]domain.FundOverview, error) {
	ctx, span := tracer.Start(ctx, "OverviewService.FundOverviews")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("fund_overviews", time.Since(start))
	}()

	if cached, ok := s.cache.Get(churchID); ok {
		s.metrics.IncrCacheHit("overview")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("overview")

	funds, err := s.store.ListFunds(ctx, churchID, true)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	transactions, err := s.store.ListTransactions(ctx, churchID, domain.TransactionFilter{})
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	pledges, err := s.store.ListPledges(ctx, churchID)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	accs := make(map[string]*fundAccumulator, len(funds))
	for _, f := range funds {
		accs[f.ID] = &fundAccumulator{donations: make(map[string]*donorGifts)}
	}

	// Fold transactions (date ascending) into their fund's accumulator.
	for _, tx := range transactions {
		acc, ok := accs[tx.FundID]
		if !ok {
			continue // fund inactive or gone: silent skip
		}

		delta := tx.Delta()
		acc.deltaSum += delta
		if tx.Type == domain.TransactionIncome {
			acc.incomeTotal += tx.Amount
		} else {
			acc.expenseTotal += tx.Amount
		}
		acc.lastTransactionDate = tx.Date
		acc.transactions = append(acc.transactions, tx)

		if tx.Type == domain.TransactionIncome && tx.DonorID != "" {
			dg, ok := acc.donations[tx.DonorID]
			if !ok {
				dg = &donorGifts{}
				acc.donations[tx.DonorID] = dg
			}
			dg.total += tx.Amount
			dg.lastDate = domain.LaterDate(dg.lastDate, tx.Date)
			dg.gifts = append(dg.gifts, gift{date: tx.Date, amount: tx.Amount})
		}
	}

	pledgesByFund := make(map[string][]domain.Pledge)
	for _, p := range pledges {
		pledgesByFund[p.FundID] = append(pledgesByFund[p.FundID], p)
	}

	donors, err := s.resolveDonors(ctx, churchID, pledges, accs)
	if err != nil {
		return nil, err
	}

	overviews := make([]domain.FundOverview, 0, len(funds))
	for _, fund := range funds {
		acc := accs[fund.ID]
		ov := domain.FundOverview{
			Fund:                fund,
			IncomeTotal:         acc.incomeTotal,
			ExpenseTotal:        acc.expenseTotal,
			OpeningBalance:      fund.Balance - acc.deltaSum,
			LastTransactionDate: acc.lastTransactionDate,
			Ledger:              buildLedger(fund.Balance-acc.deltaSum, acc.transactions),
		}
		if fund.IsFundraising {
			fr := s.buildFundraising(fund, acc, pledgesByFund[fund.ID], donors)
			ov.Fundraising = &fr
		}
		overviews = append(overviews, ov)
	}

	s.cache.Set(churchID, overviews)
	return overviews, nil
}

// buildLedger back-computes the balance before the first transaction from the
// fund's current cached balance, then replays each delta in order. The last
// row's balance therefore always equals the cached balance.
func buildLedger(opening float64, transactions []domain.Transaction) []domain.LedgerRow {
	rows := make([]domain.LedgerRow, 0, len(transactions))
	running := opening
	for i := range transactions {
		tx := &transactions[i]
		running += tx.Delta()
		rows = append(rows, domain.LedgerRow{
			TransactionID: tx.ID,
			Date:          tx.Date,
			Description:   tx.Description,
			Type:          tx.Type,
			Amount:        tx.Amount,
			Balance:       running,
		})
	}
	return rows
}

// buildFundraising assembles the supporter breakdown for one fundraising fund.
func (s *OverviewService) buildFundraising(fund domain.Fund, acc *fundAccumulator, pledges []domain.Pledge, donors map[string]domain.Donor) domain.FundraisingOverview {
	fr := domain.FundraisingOverview{
		Supporters:          make([]domain.PledgeSupporter, 0, len(pledges)),
		DonorsWithoutPledge: []domain.DonorGiving{},
	}

	pledgedDonors := make(map[string]bool, len(pledges))
	for _, p := range pledges {
		pledgedDonors[p.DonorID] = true
		if p.Status != domain.PledgeCancelled {
			fr.PledgedTotal += p.Amount
		}

		// Donations count toward a pledge only when dated on or after the
		// pledge date. Dates are canonical, so string comparison is safe.
		var amountDonated float64
		var lastDonationAt string
		if dg, ok := acc.donations[p.DonorID]; ok {
			for _, g := range dg.gifts {
				if g.date >= p.PledgedAt {
					amountDonated += g.amount
					lastDonationAt = domain.LaterDate(lastDonationAt, g.date)
				}
			}
		}

		computedStatus := p.Status
		if p.Status != domain.PledgeCancelled && amountDonated >= p.Amount {
			computedStatus = domain.PledgeFulfilled
		}

		completion := float64(0)
		if p.Amount > 0 {
			completion = amountDonated / p.Amount
			if completion > 1 {
				completion = 1
			}
		}

		outstanding := p.Amount - amountDonated
		if outstanding < 0 {
			outstanding = 0
		}

		fr.Supporters = append(fr.Supporters, domain.PledgeSupporter{
			PledgeID:       p.ID,
			DonorID:        p.DonorID,
			DonorName:      donorName(donors, p.DonorID),
			Amount:         p.Amount,
			PledgedAt:      p.PledgedAt,
			DueDate:        p.DueDate,
			Status:         p.Status,
			ComputedStatus: computedStatus,
			AmountDonated:  amountDonated,
			Outstanding:    outstanding,
			Completion:     completion,
			LastDonationAt: lastDonationAt,
			Notes:          p.Notes,
		})
	}

	unpledged := make([]string, 0)
	for donorID := range acc.donations {
		if !pledgedDonors[donorID] {
			unpledged = append(unpledged, donorID)
		}
	}
	sort.Strings(unpledged)
	for _, donorID := range unpledged {
		dg := acc.donations[donorID]
		fr.DonorsWithoutPledge = append(fr.DonorsWithoutPledge, domain.DonorGiving{
			DonorID:        donorID,
			DonorName:      donorName(donors, donorID),
			TotalDonated:   dg.total,
			LastDonationAt: dg.lastDate,
		})
	}

	fr.SupporterCount = len(pledgedDonors) + len(unpledged)

	if fund.FundraisingTarget != nil {
		fr.Target = fund.FundraisingTarget
		outstanding := *fund.FundraisingTarget - acc.incomeTotal
		if outstanding < 0 {
			outstanding = 0
		}
		fr.OutstandingToTarget = &outstanding
	}

	return fr
}

// resolveDonors batch-fetches every donor referenced by a pledge or by the
// donation indexes. Fan-out of independent point reads, bounded by the
// configured concurrency. A donor that cannot be fetched is simply absent
// from the map; callers fall back to the unknown-donor label.
func (s *OverviewService) resolveDonors(ctx context.Context, churchID string, pledges []domain.Pledge, accs map[string]*fundAccumulator) (map[string]domain.Donor, error) {
	idSet := make(map[string]bool)
	for _, p := range pledges {
		idSet[p.DonorID] = true
	}
	for _, acc := range accs {
		for donorID := range acc.donations {
			idSet[donorID] = true
		}
	}
	if len(idSet) == 0 {
		return map[string]domain.Donor{}, nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var mu sync.Mutex
	resolved := make(map[string]domain.Donor, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			donor, err := s.store.GetDonor(gctx, churchID, id)
			if err != nil {
				s.logger.Debug("overview: donor not resolvable",
					zap.String("donor_id", id),
					zap.Error(err),
				)
				return nil // degrade, never fail the read
			}
			mu.Lock()
			resolved[donor.ID] = *donor
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func donorName(donors map[string]domain.Donor, donorID string) string {
	if d, ok := donors[donorID]; ok {
		return d.Name
	}
	return domain.UnknownDonorName
}

package service

import (
	"context"
	"sort"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReportService builds donor statements, Gift Aid estimates and period
// summaries. Read-only, same silent-skip policy as the overview: a missing
// reference degrades the row, never the report.
type ReportService struct {
	store  port.LedgerStore
	logger *zap.Logger
}

// NewReportService creates a report service.
func NewReportService(store port.LedgerStore, logger *zap.Logger) *ReportService {
	return &ReportService{store: store, logger: logger}
}

// GivingStatement returns one donor's giving over a date range, grouped by
// fund. Used for annual statements.
func (s *ReportService) GivingStatement(ctx context.Context, churchID, donorID, fromDate, toDate string) (*domain.GivingStatement, error) {
	ctx, span := tracer.Start(ctx, "ReportService.GivingStatement")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("donor.id", donorID),
	)

	from, to, err := normalizeRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	donor, err := s.store.GetDonor(ctx, churchID, donorID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.store.ListTransactions(ctx, churchID, domain.TransactionFilter{
		DonorID:  donorID,
		Type:     domain.TransactionIncome,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		return nil, err
	}

	funds, err := s.store.ListFunds(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	fundNames := make(map[string]string, len(funds))
	for _, f := range funds {
		fundNames[f.ID] = f.Name
	}

	byFund := make(map[string]*domain.StatementLine)
	statement := &domain.GivingStatement{
		DonorID:   donor.ID,
		DonorName: donor.Name,
		FromDate:  from,
		ToDate:    to,
		Lines:     []domain.StatementLine{},
	}
	for _, tx := range transactions {
		line, ok := byFund[tx.FundID]
		if !ok {
			name := fundNames[tx.FundID]
			if name == "" {
				name = "Unknown fund"
			}
			line = &domain.StatementLine{FundID: tx.FundID, FundName: name}
			byFund[tx.FundID] = line
		}
		line.Total += tx.Amount
		line.GiftCount++
		statement.Total += tx.Amount
	}

	for _, line := range byFund {
		statement.Lines = append(statement.Lines, *line)
	}
	sort.Slice(statement.Lines, func(i, j int) bool {
		return statement.Lines[i].FundName < statement.Lines[j].FundName
	})
	return statement, nil
}

// GiftAidReport estimates the UK Gift Aid reclaim for eligible donors' giving
// in a date range. Estimation only; the claim itself is filed elsewhere.
func (s *ReportService) GiftAidReport(ctx context.Context, churchID, fromDate, toDate string) (*domain.GiftAidReport, error) {
	ctx, span := tracer.Start(ctx, "ReportService.GiftAidReport")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	from, to, err := normalizeRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	donors, err := s.store.ListDonors(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	eligible := make(map[string]domain.Donor)
	for _, d := range donors {
		if d.GiftAidEligible {
			eligible[d.ID] = d
		}
	}

	transactions, err := s.store.ListTransactions(ctx, churchID, domain.TransactionFilter{
		Type:     domain.TransactionIncome,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, tx := range transactions {
		if tx.DonorID == "" {
			continue
		}
		if _, ok := eligible[tx.DonorID]; !ok {
			continue
		}
		totals[tx.DonorID] += tx.Amount
	}

	report := &domain.GiftAidReport{
		FromDate: from,
		ToDate:   to,
		Donors:   []domain.GiftAidDonor{},
	}
	for donorID, total := range totals {
		reclaim := total * domain.GiftAidRate
		report.TotalDonated += total
		report.TotalReclaimable += reclaim
		report.Donors = append(report.Donors, domain.GiftAidDonor{
			DonorID:      donorID,
			DonorName:    eligible[donorID].Name,
			TotalDonated: total,
			Reclaimable:  reclaim,
		})
	}
	sort.Slice(report.Donors, func(i, j int) bool {
		return report.Donors[i].DonorName < report.Donors[j].DonorName
	})
	return report, nil
}

// PeriodSummary returns the church-wide income/expense rollup for a range.
func (s *ReportService) PeriodSummary(ctx context.Context, churchID, fromDate, toDate string) (*domain.PeriodSummary, error) {
	ctx, span := tracer.Start(ctx, "ReportService.PeriodSummary")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	from, to, err := normalizeRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	funds, err := s.store.ListFunds(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	fundNames := make(map[string]string, len(funds))
	for _, f := range funds {
		fundNames[f.ID] = f.Name
	}

	transactions, err := s.store.ListTransactions(ctx, churchID, domain.TransactionFilter{
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		return nil, err
	}

	summary := &domain.PeriodSummary{
		FromDate: from,
		ToDate:   to,
		ByFund:   []domain.FundPeriodTotals{},
	}
	byFund := make(map[string]*domain.FundPeriodTotals)
	for _, tx := range transactions {
		totals, ok := byFund[tx.FundID]
		if !ok {
			name := fundNames[tx.FundID]
			if name == "" {
				name = "Unknown fund"
			}
			totals = &domain.FundPeriodTotals{FundID: tx.FundID, FundName: name}
			byFund[tx.FundID] = totals
		}
		if tx.Type == domain.TransactionIncome {
			totals.IncomeTotal += tx.Amount
			summary.IncomeTotal += tx.Amount
		} else {
			totals.ExpenseTotal += tx.Amount
			summary.ExpenseTotal += tx.Amount
		}
	}
	summary.Net = summary.IncomeTotal - summary.ExpenseTotal

	for _, totals := range byFund {
		summary.ByFund = append(summary.ByFund, *totals)
	}
	sort.Slice(summary.ByFund, func(i, j int) bool {
		return summary.ByFund[i].FundName < summary.ByFund[j].FundName
	})
	return summary, nil
}

// normalizeRange validates an inclusive date range, normalizing both ends.
// Either end may be empty (open range).
func normalizeRange(fromDate, toDate string) (string, string, error) {
	from, to := "", ""
	if fromDate != "" {
		var ok bool
		from, ok = domain.NormalizeDate(fromDate)
		if !ok {
			return "", "", &domain.ErrValidation{Field: "from", Message: "unrecognized date format"}
		}
	}
	if toDate != "" {
		var ok bool
		to, ok = domain.NormalizeDate(toDate)
		if !ok {
			return "", "", &domain.ErrValidation{Field: "to", Message: "unrecognized date format"}
		}
	}
	if from != "" && to != "" && from > to {
		return "", "", &domain.ErrValidation{Field: "from", Message: "must not be after to"}
	}
	return from, to, nil
}

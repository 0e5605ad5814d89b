package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/service"

	"go.uber.org/zap"
)

func reportStore() *fakeStore {
	return &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "General", Type: "general", IsActive: true},
			{ID: "f2", ChurchID: "ch1", Name: "Building", Type: "designated", IsActive: true},
		},
		donors: []domain.Donor{
			{ID: "d1", ChurchID: "ch1", Name: "Ada Lovelace", GiftAidEligible: true, IsActive: true},
			{ID: "d2", ChurchID: "ch1", Name: "Charles Babbage", GiftAidEligible: false, IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 100, Date: "2024-01-07"},
			{ID: "tx2", ChurchID: "ch1", FundID: "f2", DonorID: "d1", Type: "income", Amount: 40, Date: "2024-02-04"},
			{ID: "tx3", ChurchID: "ch1", FundID: "f1", DonorID: "d2", Type: "income", Amount: 60, Date: "2024-02-11"},
			{ID: "tx4", ChurchID: "ch1", FundID: "f1", Type: "expense", Amount: 30, Date: "2024-02-15"},
			{ID: "tx5", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 25, Date: "2025-01-05"},
		},
	}
}

func TestGivingStatement(t *testing.T) {
	svc := service.NewReportService(reportStore(), zap.NewNop())

	statement, err := svc.GivingStatement(context.Background(), "ch1", "d1", "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if statement.DonorName != "Ada Lovelace" {
		t.Errorf("expected donor name, got %q", statement.DonorName)
	}
	if statement.Total != 140 {
		t.Errorf("expected total 140 inside the range, got %f", statement.Total)
	}
	if len(statement.Lines) != 2 {
		t.Fatalf("expected 2 fund lines, got %d", len(statement.Lines))
	}
	// Lines are sorted by fund name.
	if statement.Lines[0].FundName != "Building" || statement.Lines[0].Total != 40 {
		t.Errorf("unexpected first line %+v", statement.Lines[0])
	}
	if statement.Lines[1].FundName != "General" || statement.Lines[1].GiftCount != 1 {
		t.Errorf("unexpected second line %+v", statement.Lines[1])
	}
}

func TestGivingStatement_UnknownDonor(t *testing.T) {
	svc := service.NewReportService(reportStore(), zap.NewNop())

	_, err := svc.GivingStatement(context.Background(), "ch1", "ghost", "", "")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGiftAidReport(t *testing.T) {
	svc := service.NewReportService(reportStore(), zap.NewNop())

	report, err := svc.GiftAidReport(context.Background(), "ch1", "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Only the eligible donor counts.
	if len(report.Donors) != 1 {
		t.Fatalf("expected 1 eligible donor, got %d", len(report.Donors))
	}
	if report.Donors[0].TotalDonated != 140 {
		t.Errorf("expected 140 donated, got %f", report.Donors[0].TotalDonated)
	}
	if report.Donors[0].Reclaimable != 35 {
		t.Errorf("expected 25%% reclaim of 140, got %f", report.Donors[0].Reclaimable)
	}
	if report.TotalReclaimable != 35 {
		t.Errorf("expected total reclaimable 35, got %f", report.TotalReclaimable)
	}
}

func TestPeriodSummary(t *testing.T) {
	svc := service.NewReportService(reportStore(), zap.NewNop())

	summary, err := svc.PeriodSummary(context.Background(), "ch1", "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.IncomeTotal != 200 || summary.ExpenseTotal != 30 {
		t.Errorf("expected income 200 / expense 30, got %f/%f", summary.IncomeTotal, summary.ExpenseTotal)
	}
	if summary.Net != 170 {
		t.Errorf("expected net 170, got %f", summary.Net)
	}
	if len(summary.ByFund) != 2 {
		t.Fatalf("expected 2 funds in rollup, got %d", len(summary.ByFund))
	}
	if summary.ByFund[0].FundName != "Building" {
		t.Errorf("expected rollup sorted by fund name, got %q first", summary.ByFund[0].FundName)
	}
}

func TestPeriodSummary_InvalidRange(t *testing.T) {
	svc := service.NewReportService(reportStore(), zap.NewNop())

	var verr *domain.ErrValidation
	if _, err := svc.PeriodSummary(context.Background(), "ch1", "2024-06-01", "2024-01-01"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
	if _, err := svc.PeriodSummary(context.Background(), "ch1", "whenever", ""); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for garbage date, got %v", err)
	}
}

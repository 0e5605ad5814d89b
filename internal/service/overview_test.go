package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/infra/cache"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/service"

	"go.uber.org/zap"
)

func newOverviewService(t *testing.T, store *fakeStore) *service.OverviewService {
	t.Helper()
	c := cache.New[[]domain.FundOverview](time.Minute)
	t.Cleanup(c.Close)
	return service.NewOverviewService(store, c, observability.NewMetrics(), zap.NewNop(), 2)
}

func TestFundOverviews_OpeningBalanceAndLedger(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "General", Type: "general", Balance: 500, IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", Type: "income", Amount: 300, Date: "2024-01-01"},
			{ID: "tx2", ChurchID: "ch1", FundID: "f1", Type: "expense", Amount: 100, Date: "2024-02-01"},
		},
	}
	svc := newOverviewService(t, store)

	overviews, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(overviews) != 1 {
		t.Fatalf("expected 1 overview, got %d", len(overviews))
	}

	ov := overviews[0]
	if ov.OpeningBalance != 300 {
		t.Errorf("expected opening balance 300, got %f", ov.OpeningBalance)
	}
	if ov.IncomeTotal != 300 || ov.ExpenseTotal != 100 {
		t.Errorf("expected totals 300/100, got %f/%f", ov.IncomeTotal, ov.ExpenseTotal)
	}
	if ov.LastTransactionDate != "2024-02-01" {
		t.Errorf("expected last transaction date 2024-02-01, got %q", ov.LastTransactionDate)
	}
	if len(ov.Ledger) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(ov.Ledger))
	}
	if ov.Ledger[0].Balance != 600 {
		t.Errorf("expected balance 600 after first row, got %f", ov.Ledger[0].Balance)
	}
	if ov.Ledger[1].Balance != 500 {
		t.Errorf("expected balance 500 after second row, got %f", ov.Ledger[1].Balance)
	}
	// Replaying the full ledger must land exactly on the cached balance.
	if last := ov.Ledger[len(ov.Ledger)-1].Balance; last != ov.Fund.Balance {
		t.Errorf("last ledger balance %f does not match fund balance %f", last, ov.Fund.Balance)
	}
}

func TestFundOverviews_PledgeFulfilledByDonations(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "Roof", Type: "designated", Balance: 110, IsActive: true, IsFundraising: true},
		},
		donors: []domain.Donor{
			{ID: "d1", ChurchID: "ch1", Name: "Ada Lovelace", IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 60, Date: "2024-01-15"},
			{ID: "tx2", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 50, Date: "2024-02-01"},
		},
		pledges: []domain.Pledge{
			{ID: "p1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Amount: 100, PledgedAt: "2024-01-01", Status: "open"},
		},
	}
	svc := newOverviewService(t, store)

	overviews, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	fr := overviews[0].Fundraising
	if fr == nil {
		t.Fatal("expected fundraising overview")
	}
	if len(fr.Supporters) != 1 {
		t.Fatalf("expected 1 supporter, got %d", len(fr.Supporters))
	}

	sup := fr.Supporters[0]
	if sup.DonorName != "Ada Lovelace" {
		t.Errorf("expected resolved donor name, got %q", sup.DonorName)
	}
	if sup.AmountDonated != 110 {
		t.Errorf("expected amount donated 110, got %f", sup.AmountDonated)
	}
	if sup.Outstanding != 0 {
		t.Errorf("expected outstanding 0, got %f", sup.Outstanding)
	}
	if sup.Completion != 1 {
		t.Errorf("expected completion clamped to 1, got %f", sup.Completion)
	}
	if sup.Status != "open" {
		t.Errorf("stored status must not change, got %q", sup.Status)
	}
	if sup.ComputedStatus != "fulfilled" {
		t.Errorf("expected computed status fulfilled, got %q", sup.ComputedStatus)
	}
	if sup.LastDonationAt != "2024-02-01" {
		t.Errorf("expected last donation 2024-02-01, got %q", sup.LastDonationAt)
	}
	if fr.PledgedTotal != 100 {
		t.Errorf("expected pledged total 100, got %f", fr.PledgedTotal)
	}
	if fr.SupporterCount != 1 {
		t.Errorf("expected supporter count 1, got %d", fr.SupporterCount)
	}
	if len(fr.DonorsWithoutPledge) != 0 {
		t.Errorf("pledged donor must not appear in donors without pledge")
	}
}

func TestFundOverviews_CancellationOverridesFulfillment(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "Organ", Type: "designated", Balance: 200, IsActive: true, IsFundraising: true},
		},
		donors: []domain.Donor{
			{ID: "d1", ChurchID: "ch1", Name: "Grace Hopper", IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 200, Date: "2024-03-01"},
		},
		pledges: []domain.Pledge{
			{ID: "p1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Amount: 150, PledgedAt: "2024-01-01", Status: "cancelled"},
		},
	}
	svc := newOverviewService(t, store)

	overviews, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	fr := overviews[0].Fundraising
	if fr.Supporters[0].ComputedStatus != "cancelled" {
		t.Errorf("cancellation must win over fulfillment, got %q", fr.Supporters[0].ComputedStatus)
	}
	if fr.PledgedTotal != 0 {
		t.Errorf("cancelled pledge must not count toward pledged total, got %f", fr.PledgedTotal)
	}
}

func TestFundOverviews_PrePledgeGiftsDoNotCount(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "Mission", Type: "designated", Balance: 80, IsActive: true, IsFundraising: true},
		},
		donors: []domain.Donor{
			{ID: "d1", ChurchID: "ch1", Name: "Alan Turing", IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 50, Date: "2023-12-01"},
			{ID: "tx2", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 30, Date: "2024-01-10"},
		},
		pledges: []domain.Pledge{
			{ID: "p1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Amount: 100, PledgedAt: "2024-01-01", Status: "open"},
		},
	}
	svc := newOverviewService(t, store)

	overviews, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	sup := overviews[0].Fundraising.Supporters[0]
	if sup.AmountDonated != 30 {
		t.Errorf("only post-pledge gifts count, expected 30, got %f", sup.AmountDonated)
	}
	if sup.Outstanding != 70 {
		t.Errorf("expected outstanding 70, got %f", sup.Outstanding)
	}
	if sup.ComputedStatus != "open" {
		t.Errorf("expected computed status open, got %q", sup.ComputedStatus)
	}
}

func TestFundOverviews_DonorsWithoutPledge(t *testing.T) {
	target := 1000.0
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "Building", Type: "designated", Balance: 400, IsActive: true, IsFundraising: true, FundraisingTarget: &target},
		},
		donors: []domain.Donor{
			{ID: "d1", ChurchID: "ch1", Name: "Pledger", IsActive: true},
			{ID: "d2", ChurchID: "ch1", Name: "Walk-in Giver", IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Type: "income", Amount: 250, Date: "2024-02-01"},
			{ID: "tx2", ChurchID: "ch1", FundID: "f1", DonorID: "d2", Type: "income", Amount: 150, Date: "2024-03-05"},
		},
		pledges: []domain.Pledge{
			{ID: "p1", ChurchID: "ch1", FundID: "f1", DonorID: "d1", Amount: 500, PledgedAt: "2024-01-01", Status: "open"},
		},
	}
	svc := newOverviewService(t, store)

	overviews, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	fr := overviews[0].Fundraising

	if len(fr.DonorsWithoutPledge) != 1 {
		t.Fatalf("expected 1 donor without pledge, got %d", len(fr.DonorsWithoutPledge))
	}
	giver := fr.DonorsWithoutPledge[0]
	if giver.DonorID != "d2" || giver.DonorName != "Walk-in Giver" {
		t.Errorf("unexpected unpledged donor %+v", giver)
	}
	if giver.TotalDonated != 150 {
		t.Errorf("expected total donated 150, got %f", giver.TotalDonated)
	}
	if giver.LastDonationAt != "2024-03-05" {
		t.Errorf("expected last donation 2024-03-05, got %q", giver.LastDonationAt)
	}
	if fr.SupporterCount != 2 {
		t.Errorf("expected supporter count 2, got %d", fr.SupporterCount)
	}
	if fr.Target == nil || *fr.Target != 1000 {
		t.Errorf("expected target 1000, got %v", fr.Target)
	}
	if fr.OutstandingToTarget == nil || *fr.OutstandingToTarget != 600 {
		t.Errorf("expected outstanding to target 600, got %v", fr.OutstandingToTarget)
	}
}

func TestFundOverviews_UnknownDonorLabel(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "Youth", Type: "designated", Balance: 25, IsActive: true, IsFundraising: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", DonorID: "ghost", Type: "income", Amount: 25, Date: "2024-04-01"},
		},
	}
	svc := newOverviewService(t, store)

	overviews, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("missing donor must not fail the report, got %v", err)
	}
	fr := overviews[0].Fundraising
	if len(fr.DonorsWithoutPledge) != 1 {
		t.Fatalf("expected 1 donor without pledge, got %d", len(fr.DonorsWithoutPledge))
	}
	if fr.DonorsWithoutPledge[0].DonorName != domain.UnknownDonorName {
		t.Errorf("expected fallback name %q, got %q", domain.UnknownDonorName, fr.DonorsWithoutPledge[0].DonorName)
	}
}

func TestFundOverviews_SkipsTransactionsOfInactiveFunds(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "General", Type: "general", Balance: 100, IsActive: true},
			{ID: "f2", ChurchID: "ch1", Name: "Closed", Type: "general", Balance: 0, IsActive: false},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", Type: "income", Amount: 100, Date: "2024-01-01"},
			{ID: "tx2", ChurchID: "ch1", FundID: "f2", Type: "income", Amount: 999, Date: "2024-01-02"},
			{ID: "tx3", ChurchID: "ch1", FundID: "gone", Type: "expense", Amount: 50, Date: "2024-01-03"},
		},
	}
	svc := newOverviewService(t, store)

	overviews, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(overviews) != 1 {
		t.Fatalf("expected only the active fund, got %d overviews", len(overviews))
	}
	if overviews[0].IncomeTotal != 100 {
		t.Errorf("foreign transactions must not leak into the fund, got income %f", overviews[0].IncomeTotal)
	}
}

func TestFundOverviews_SecondCallServedFromCache(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "General", Type: "general", Balance: 100, IsActive: true},
		},
		transactions: []domain.Transaction{
			{ID: "tx1", ChurchID: "ch1", FundID: "f1", Type: "income", Amount: 100, Date: "2024-01-01"},
		},
	}
	svc := newOverviewService(t, store)

	first, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// A store failure after the first read must not surface while cached.
	store.listFundsErr = context.DeadlineExceeded

	second, err := svc.FundOverviews(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("expected cached result, got %v", err)
	}
	if len(second) != len(first) || second[0].IncomeTotal != first[0].IncomeTotal {
		t.Errorf("cached result differs from first computation")
	}
}

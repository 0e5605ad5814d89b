package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/infra/cache"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/service"

	"go.uber.org/zap"
)

func newLedgerService(t *testing.T, store *fakeStore) *service.LedgerService {
	t.Helper()
	c := cache.New[[]domain.FundOverview](time.Minute)
	t.Cleanup(c.Close)
	return service.NewLedgerService(store, c, observability.NewMetrics(), zap.NewNop())
}

func importerStore() *fakeStore {
	return &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "General", Type: "general", Balance: 0, IsActive: true},
		},
		donors: []domain.Donor{
			{ID: "d1", ChurchID: "ch1", Name: "Ada Lovelace", IsActive: true},
		},
	}
}

func TestImportTransactions(t *testing.T) {
	store := importerStore()
	svc := newLedgerService(t, store)

	csvData := strings.Join([]string{
		"date,type,amount,fund,donor,description",
		"2024-01-01,income,100,General,Ada Lovelace,tithe",
		"15/01/2024,income,50,general,,loose offering",
		"2024-02-01,expense,30,General,,supplies",
	}, "\n")

	result, err := svc.ImportTransactions(context.Background(), "ch1", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Imported != 3 || result.Skipped != 0 {
		t.Fatalf("expected 3 imported / 0 skipped, got %d/%d", result.Imported, result.Skipped)
	}

	transactions, _ := store.ListTransactions(context.Background(), "ch1", domain.TransactionFilter{})
	if len(transactions) != 3 {
		t.Fatalf("expected 3 stored transactions, got %d", len(transactions))
	}
	if transactions[0].DonorID != "d1" {
		t.Errorf("expected donor matched by name, got %q", transactions[0].DonorID)
	}
	if transactions[1].Date != "2024-01-15" {
		t.Errorf("expected normalized date 2024-01-15, got %q", transactions[1].Date)
	}

	fund, _ := store.GetFund(context.Background(), "ch1", "f1")
	if fund.Balance != 120 {
		t.Errorf("expected fund balance 120 after import, got %f", fund.Balance)
	}
}

func TestImportTransactions_SkipsBadRows(t *testing.T) {
	store := importerStore()
	svc := newLedgerService(t, store)

	csvData := strings.Join([]string{
		"date,type,amount,fund,donor,description",
		"not-a-date,income,100,General,,bad date",
		"2024-01-01,transfer,100,General,,bad type",
		"2024-01-01,income,-5,General,,bad amount",
		"2024-01-01,income,100,Phantom,,unknown fund",
		"2024-01-02,income,40,General,Nobody Known,unknown donor still imports",
	}, "\n")

	result, err := svc.ImportTransactions(context.Background(), "ch1", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("bad rows must not abort the import, got %v", err)
	}
	if result.Imported != 1 || result.Skipped != 4 {
		t.Fatalf("expected 1 imported / 4 skipped, got %d/%d", result.Imported, result.Skipped)
	}

	for _, row := range result.Rows {
		if !row.Imported && row.Reason == "" {
			t.Errorf("skipped row %d has no reason", row.Row)
		}
	}

	transactions, _ := store.ListTransactions(context.Background(), "ch1", domain.TransactionFilter{})
	if len(transactions) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(transactions))
	}
	if transactions[0].DonorID != "" {
		t.Errorf("unknown donor should import without attribution, got %q", transactions[0].DonorID)
	}
}

func TestImportTransactions_RejectsBadHeader(t *testing.T) {
	svc := newLedgerService(t, importerStore())

	_, err := svc.ImportTransactions(context.Background(), "ch1", strings.NewReader("date,amount\n2024-01-01,5\n"))
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for missing columns, got %v", err)
	}

	_, err = svc.ImportTransactions(context.Background(), "ch1", strings.NewReader(""))
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
}

func TestCreateTransaction_RestrictedFundCannotGoNegative(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "Benevolence", Type: "restricted", Balance: 40, IsActive: true},
		},
	}
	svc := newLedgerService(t, store)

	_, err := svc.CreateTransaction(context.Background(), "ch1", &domain.CreateTransactionRequest{
		FundID: "f1", Type: "expense", Amount: 100, Date: "2024-01-01", Description: "too much",
	})
	var insufficient *domain.ErrInsufficientFunds
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
	if insufficient.Available != 40 || insufficient.Required != 100 {
		t.Errorf("unexpected amounts in error: %+v", insufficient)
	}

	// Income into the same fund is fine.
	if _, err := svc.CreateTransaction(context.Background(), "ch1", &domain.CreateTransactionRequest{
		FundID: "f1", Type: "income", Amount: 10, Date: "2024-01-01", Description: "gift",
	}); err != nil {
		t.Fatalf("expected income to succeed, got %v", err)
	}
}

func TestDeleteTransaction_ReversesBalance(t *testing.T) {
	store := &fakeStore{
		funds: []domain.Fund{
			{ID: "f1", ChurchID: "ch1", Name: "General", Type: "general", Balance: 0, IsActive: true},
		},
	}
	svc := newLedgerService(t, store)

	created, err := svc.CreateTransaction(context.Background(), "ch1", &domain.CreateTransactionRequest{
		FundID: "f1", Type: "income", Amount: 75, Date: "2024-01-01", Description: "offering",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	fund, _ := store.GetFund(context.Background(), "ch1", "f1")
	if fund.Balance != 75 {
		t.Fatalf("expected balance 75 after create, got %f", fund.Balance)
	}

	if err := svc.DeleteTransaction(context.Background(), "ch1", created.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	fund, _ = store.GetFund(context.Background(), "ch1", "f1")
	if fund.Balance != 0 {
		t.Errorf("expected balance back to 0 after delete, got %f", fund.Balance)
	}
}

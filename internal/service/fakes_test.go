package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/stewardapp/steward-go/internal/domain"
)

// fakeStore is an in-memory port.LedgerStore for service tests.
type fakeStore struct {
	mu           sync.Mutex
	churches     []domain.Church
	funds        []domain.Fund
	donors       []domain.Donor
	transactions []domain.Transaction
	pledges      []domain.Pledge

	listFundsErr error
}

func (f *fakeStore) GetChurch(_ context.Context, churchID string) (*domain.Church, error) {
	for _, c := range f.churches {
		if c.ID == churchID {
			church := c
			return &church, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "church", ID: churchID}
}

func (f *fakeStore) ListChurches(_ context.Context) ([]domain.Church, error) {
	return f.churches, nil
}

func (f *fakeStore) ListFunds(_ context.Context, churchID string, activeOnly bool) ([]domain.Fund, error) {
	if f.listFundsErr != nil {
		return nil, f.listFundsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Fund
	for _, fund := range f.funds {
		if fund.ChurchID != churchID {
			continue
		}
		if activeOnly && !fund.IsActive {
			continue
		}
		out = append(out, fund)
	}
	return out, nil
}

func (f *fakeStore) GetFund(_ context.Context, churchID, fundID string) (*domain.Fund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fund := range f.funds {
		if fund.ChurchID == churchID && fund.ID == fundID {
			fc := fund
			return &fc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "fund", ID: fundID}
}

func (f *fakeStore) CreateFund(_ context.Context, fund *domain.Fund) (*domain.Fund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.funds = append(f.funds, *fund)
	fc := *fund
	return &fc, nil
}

func (f *fakeStore) UpdateFund(_ context.Context, fundID string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.funds {
		if f.funds[i].ID != fundID {
			continue
		}
		if v, ok := updates["name"].(string); ok {
			f.funds[i].Name = v
		}
		if v, ok := updates["description"].(string); ok {
			f.funds[i].Description = v
		}
		if v, ok := updates["is_active"].(bool); ok {
			f.funds[i].IsActive = v
		}
		if v, ok := updates["is_fundraising"].(bool); ok {
			f.funds[i].IsFundraising = v
		}
		if v, ok := updates["fundraising_target"].(float64); ok {
			f.funds[i].FundraisingTarget = &v
		}
		return nil
	}
	return &domain.ErrNotFound{Resource: "fund", ID: fundID}
}

func (f *fakeStore) UpdateFundBalance(_ context.Context, fundID string, delta float64) (*domain.Fund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.funds {
		if f.funds[i].ID == fundID {
			f.funds[i].Balance += delta
			fc := f.funds[i]
			return &fc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "fund", ID: fundID}
}

func (f *fakeStore) ListTransactions(_ context.Context, churchID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range f.transactions {
		if tx.ChurchID != churchID {
			continue
		}
		if filter.FundID != "" && tx.FundID != filter.FundID {
			continue
		}
		if filter.DonorID != "" && tx.DonorID != filter.DonorID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.FromDate != "" && tx.Date < filter.FromDate {
			continue
		}
		if filter.ToDate != "" && tx.Date > filter.ToDate {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, churchID, transactionID string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.transactions {
		if tx.ChurchID == churchID && tx.ID == transactionID {
			tc := tx
			return &tc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, *tx)
	tc := *tx
	return &tc, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, churchID, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, tx := range f.transactions {
		if tx.ChurchID == churchID && tx.ID == transactionID {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}

func (f *fakeStore) ListDonors(_ context.Context, churchID string, activeOnly bool) ([]domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Donor
	for _, d := range f.donors {
		if d.ChurchID != churchID {
			continue
		}
		if activeOnly && !d.IsActive {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) GetDonor(_ context.Context, churchID, donorID string) (*domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.donors {
		if d.ChurchID == churchID && d.ID == donorID {
			dc := d
			return &dc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "donor", ID: donorID}
}

func (f *fakeStore) CreateDonor(_ context.Context, donor *domain.Donor) (*domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.donors = append(f.donors, *donor)
	dc := *donor
	return &dc, nil
}

func (f *fakeStore) UpdateDonor(_ context.Context, donorID string, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.donors {
		if f.donors[i].ID != donorID {
			continue
		}
		if v, ok := updates["name"].(string); ok {
			f.donors[i].Name = v
		}
		if v, ok := updates["is_active"].(bool); ok {
			f.donors[i].IsActive = v
		}
		if v, ok := updates["gift_aid_eligible"].(bool); ok {
			f.donors[i].GiftAidEligible = v
		}
		return nil
	}
	return &domain.ErrNotFound{Resource: "donor", ID: donorID}
}

func (f *fakeStore) ListPledges(_ context.Context, churchID string) ([]domain.Pledge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Pledge
	for _, p := range f.pledges {
		if p.ChurchID == churchID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPledge(_ context.Context, churchID, pledgeID string) (*domain.Pledge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pledges {
		if p.ChurchID == churchID && p.ID == pledgeID {
			pc := p
			return &pc, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "pledge", ID: pledgeID}
}

func (f *fakeStore) CreatePledge(_ context.Context, pledge *domain.Pledge) (*domain.Pledge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pledges = append(f.pledges, *pledge)
	pc := *pledge
	return &pc, nil
}

func (f *fakeStore) UpdatePledgeStatus(_ context.Context, pledgeID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.pledges {
		if f.pledges[i].ID == pledgeID {
			f.pledges[i].Status = status
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "pledge", ID: pledgeID}
}

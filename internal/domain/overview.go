package domain

// ============================================================
// Fund overview (derived, non-persisted view)
// ============================================================

// LedgerRow is one transaction replayed with the fund's running balance
// after that transaction.
type LedgerRow struct {
	TransactionID string  `json:"transaction_id"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	Balance       float64 `json:"balance"`
}

// PledgeSupporter is a pledge enriched with the donor's post-pledge giving.
// ComputedStatus overrides the stored status when the pledge is covered by
// donations, except that cancellation always wins.
type PledgeSupporter struct {
	PledgeID       string  `json:"pledge_id"`
	DonorID        string  `json:"donor_id"`
	DonorName      string  `json:"donor_name"`
	Amount         float64 `json:"amount"`
	PledgedAt      string  `json:"pledged_at"`
	DueDate        string  `json:"due_date,omitempty"`
	Status         string  `json:"status"`
	ComputedStatus string  `json:"computed_status"`
	AmountDonated  float64 `json:"amount_donated"`
	Outstanding    float64 `json:"outstanding_amount"`
	Completion     float64 `json:"completion"` // clamped to [0,1]
	LastDonationAt string  `json:"last_donation_at,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// DonorGiving summarizes a donor who gave to a fundraising fund without
// holding a pledge on it.
type DonorGiving struct {
	DonorID        string  `json:"donor_id"`
	DonorName      string  `json:"donor_name"`
	TotalDonated   float64 `json:"total_donated"`
	LastDonationAt string  `json:"last_donation_at,omitempty"`
}

// FundraisingOverview is the supporter breakdown for fundraising funds.
type FundraisingOverview struct {
	Target              *float64          `json:"target,omitempty"`
	PledgedTotal        float64           `json:"pledged_total"`
	SupporterCount      int               `json:"supporter_count"`
	OutstandingToTarget *float64          `json:"outstanding_to_target,omitempty"`
	Supporters          []PledgeSupporter `json:"supporters"`
	DonorsWithoutPledge []DonorGiving     `json:"donors_without_pledge"`
}

// FundOverview is the per-fund summary returned by the aggregator: totals,
// a chronological ledger with running balance, and (for fundraising funds)
// the supporter breakdown.
type FundOverview struct {
	Fund                Fund                 `json:"fund"`
	IncomeTotal         float64              `json:"income_total"`
	ExpenseTotal        float64              `json:"expense_total"`
	OpeningBalance      float64              `json:"opening_balance"`
	LastTransactionDate string               `json:"last_transaction_date,omitempty"`
	Ledger              []LedgerRow          `json:"ledger"`
	Fundraising         *FundraisingOverview `json:"fundraising,omitempty"`
}

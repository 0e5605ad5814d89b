package domain

// ============================================================
// Reports
// ============================================================

// StatementLine is one fund's subtotal on a donor giving statement.
type StatementLine struct {
	FundID    string  `json:"fund_id"`
	FundName  string  `json:"fund_name"`
	Total     float64 `json:"total"`
	GiftCount int     `json:"gift_count"`
}

// GivingStatement summarizes a donor's giving over a date range, grouped by
// fund. Used for annual statements.
type GivingStatement struct {
	DonorID   string          `json:"donor_id"`
	DonorName string          `json:"donor_name"`
	FromDate  string          `json:"from_date"`
	ToDate    string          `json:"to_date"`
	Total     float64         `json:"total"`
	Lines     []StatementLine `json:"lines"`
}

// GiftAidRate is the UK reclaim rate: 25p per £1 donated.
const GiftAidRate = 0.25

// GiftAidDonor is one eligible donor's line on a Gift Aid report.
type GiftAidDonor struct {
	DonorID      string  `json:"donor_id"`
	DonorName    string  `json:"donor_name"`
	TotalDonated float64 `json:"total_donated"`
	Reclaimable  float64 `json:"reclaimable"`
}

// GiftAidReport lists gift-aid-eligible giving over a date range with the
// estimated reclaim amount. Estimation only; the actual claim is filed
// outside this system.
type GiftAidReport struct {
	FromDate         string         `json:"from_date"`
	ToDate           string         `json:"to_date"`
	TotalDonated     float64        `json:"total_donated"`
	TotalReclaimable float64        `json:"total_reclaimable"`
	Donors           []GiftAidDonor `json:"donors"`
}

// PeriodSummary is the church-wide income/expense rollup for a date range.
type PeriodSummary struct {
	FromDate     string             `json:"from_date"`
	ToDate       string             `json:"to_date"`
	IncomeTotal  float64            `json:"income_total"`
	ExpenseTotal float64            `json:"expense_total"`
	Net          float64            `json:"net"`
	ByFund       []FundPeriodTotals `json:"by_fund"`
}

// FundPeriodTotals is one fund's slice of a period summary.
type FundPeriodTotals struct {
	FundID       string  `json:"fund_id"`
	FundName     string  `json:"fund_name"`
	IncomeTotal  float64 `json:"income_total"`
	ExpenseTotal float64 `json:"expense_total"`
}

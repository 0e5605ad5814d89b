package domain

// ============================================================
// Transactions (fund ledger entries)
// ============================================================

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction is a single ledger entry. It belongs to exactly one fund and,
// for income, may be attributed to a donor. Date is canonical YYYY-MM-DD
// (normalized on the way in, see NormalizeDate).
type Transaction struct {
	ID          string  `json:"id"`
	ChurchID    string  `json:"church_id"`
	FundID      string  `json:"fund_id"`
	DonorID     string  `json:"donor_id,omitempty"`
	Type        string  `json:"type"` // income, expense
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
}

// Delta is the signed effect of the transaction on its fund's balance.
func (t *Transaction) Delta() float64 {
	if t.Type == TransactionExpense {
		return -t.Amount
	}
	return t.Amount
}

// CreateTransactionRequest is the payload for POST /transactions.
type CreateTransactionRequest struct {
	FundID      string  `json:"fund_id"`
	DonorID     string  `json:"donor_id,omitempty"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
}

// TransactionFilter narrows a church-scoped transaction listing.
type TransactionFilter struct {
	FundID   string
	DonorID  string
	Type     string
	FromDate string // canonical YYYY-MM-DD, inclusive
	ToDate   string // canonical YYYY-MM-DD, inclusive
}

// ============================================================
// CSV import
// ============================================================

// ImportRowResult records the outcome of one CSV row.
type ImportRowResult struct {
	Row           int    `json:"row"`
	Imported      bool   `json:"imported"`
	TransactionID string `json:"transaction_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// ImportResult summarizes a CSV import run.
type ImportResult struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Rows     []ImportRowResult `json:"rows"`
}

// ============================================================
// AI categorization
// ============================================================

// CategorizeItem is one uncategorized entry submitted for a suggestion.
type CategorizeItem struct {
	Reference   string  `json:"reference"` // caller-chosen correlation id
	Description string  `json:"description"`
	Amount      float64 `json:"amount,omitempty"`
}

// CategorySuggestion is the model's proposal for one item. Suggestions are
// advisory only; nothing is written on their basis.
type CategorySuggestion struct {
	Reference  string  `json:"reference"`
	FundName   string  `json:"fund_name"`
	Type       string  `json:"type"` // income, expense
	Confidence float64 `json:"confidence"`
}

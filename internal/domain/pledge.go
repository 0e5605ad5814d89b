package domain

// ============================================================
// Pledges (committed future giving against a fundraising fund)
// ============================================================

// Pledge statuses.
const (
	PledgeOpen      = "open"
	PledgeFulfilled = "fulfilled"
	PledgeCancelled = "cancelled"
)

// Pledge is a donor's commitment to give Amount to a fund. PledgedAt and
// DueDate are canonical YYYY-MM-DD strings.
type Pledge struct {
	ID        string  `json:"id"`
	ChurchID  string  `json:"church_id"`
	FundID    string  `json:"fund_id"`
	DonorID   string  `json:"donor_id"`
	Amount    float64 `json:"amount"`
	PledgedAt string  `json:"pledged_at"`
	DueDate   string  `json:"due_date,omitempty"`
	Status    string  `json:"status"` // open, fulfilled, cancelled
	Notes     string  `json:"notes,omitempty"`
}

// ValidPledgeStatus reports whether s is one of the known pledge statuses.
func ValidPledgeStatus(s string) bool {
	switch s {
	case PledgeOpen, PledgeFulfilled, PledgeCancelled:
		return true
	}
	return false
}

// CreatePledgeRequest is the payload for POST /pledges.
type CreatePledgeRequest struct {
	FundID    string  `json:"fund_id"`
	DonorID   string  `json:"donor_id"`
	Amount    float64 `json:"amount"`
	PledgedAt string  `json:"pledged_at,omitempty"` // defaults to today
	DueDate   string  `json:"due_date,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

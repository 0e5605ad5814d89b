package domain

import "time"

// ============================================================
// Churches
// ============================================================

// Church is the tenant every record is scoped to.
type Church struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================
// Funds
// ============================================================

// Fund types.
const (
	FundTypeGeneral    = "general"
	FundTypeRestricted = "restricted"
	FundTypeDesignated = "designated"
)

// Fund is a named bucket of money with a cached running balance.
// Balance is authoritative for the current total; historical points are
// derived by replaying transaction deltas against it.
type Fund struct {
	ID                string    `json:"id"`
	ChurchID          string    `json:"church_id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"` // general, restricted, designated
	Description       string    `json:"description,omitempty"`
	Balance           float64   `json:"balance"`
	IsActive          bool      `json:"is_active"`
	IsFundraising     bool      `json:"is_fundraising"`
	FundraisingTarget *float64  `json:"fundraising_target,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// ValidFundType reports whether t is one of the known fund types.
func ValidFundType(t string) bool {
	switch t {
	case FundTypeGeneral, FundTypeRestricted, FundTypeDesignated:
		return true
	}
	return false
}

// CreateFundRequest is the payload for POST /funds.
type CreateFundRequest struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Description       string   `json:"description,omitempty"`
	OpeningBalance    float64  `json:"opening_balance,omitempty"`
	IsFundraising     bool     `json:"is_fundraising,omitempty"`
	FundraisingTarget *float64 `json:"fundraising_target,omitempty"`
}

// UpdateFundRequest carries the mutable fund fields. Nil means unchanged.
type UpdateFundRequest struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	IsFundraising     *bool    `json:"is_fundraising,omitempty"`
	FundraisingTarget *float64 `json:"fundraising_target,omitempty"`
}

// BalanceIntegrity is the result of comparing a fund's cached balance with
// the total derived from its transaction log.
type BalanceIntegrity struct {
	FundID          string  `json:"fund_id"`
	FundName        string  `json:"fund_name"`
	CachedBalance   float64 `json:"cached_balance"`
	ComputedBalance float64 `json:"computed_balance"`
	Drift           float64 `json:"drift"`
	Consistent      bool    `json:"consistent"`
}

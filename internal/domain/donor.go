package domain

import "time"

// ============================================================
// Donors
// ============================================================

// UnknownDonorName is the display fallback for donor references that cannot
// be resolved. Reports never fail on a missing donor.
const UnknownDonorName = "Unknown donor"

// Donor is a giver registered with a church. Soft-deleted via IsActive.
type Donor struct {
	ID              string    `json:"id"`
	ChurchID        string    `json:"church_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Address         string    `json:"address,omitempty"`
	GiftAidEligible bool      `json:"gift_aid_eligible"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateDonorRequest is the payload for POST /donors.
type CreateDonorRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
	GiftAidEligible bool   `json:"gift_aid_eligible,omitempty"`
}

// UpdateDonorRequest carries the mutable donor fields. Nil means unchanged.
type UpdateDonorRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
	GiftAidEligible *bool   `json:"gift_aid_eligible,omitempty"`
}

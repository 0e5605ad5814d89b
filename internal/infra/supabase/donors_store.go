package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Donors (implements the donor half of port.LedgerStore)
// ============================================================

// supabaseDonor maps Supabase table columns to our domain.
type supabaseDonor struct {
	ID              string    `json:"id"`
	ChurchID        string    `json:"church_id"`
	Name            string    `json:"name"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	Address         *string   `json:"address"`
	GiftAidEligible bool      `json:"gift_aid_eligible"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r supabaseDonor) toDomain() domain.Donor {
	d := domain.Donor{
		ID:              r.ID,
		ChurchID:        r.ChurchID,
		Name:            r.Name,
		GiftAidEligible: r.GiftAidEligible,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
	}
	if r.Email != nil {
		d.Email = *r.Email
	}
	if r.Phone != nil {
		d.Phone = *r.Phone
	}
	if r.Address != nil {
		d.Address = *r.Address
	}
	return d
}

// ListDonors returns a church's donors, name-ascending.
func (c *Client) ListDonors(ctx context.Context, churchID string, activeOnly bool) ([]domain.Donor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDonors")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	path := fmt.Sprintf("donors?church_id=eq.%s&order=name.asc", url.QueryEscape(churchID))
	if activeOnly {
		path += "&is_active=eq.true"
	}
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/donors", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.Donor{}, nil
	}

	var rows []supabaseDonor
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode donors: %w", err)
	}

	donors := make([]domain.Donor, 0, len(rows))
	for _, r := range rows {
		donors = append(donors, r.toDomain())
	}
	return donors, nil
}

// GetDonor fetches a single donor scoped to a church.
func (c *Client) GetDonor(ctx context.Context, churchID, donorID string) (*domain.Donor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDonor")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("donor.id", donorID),
	)

	path := fmt.Sprintf("donors?id=eq.%s&church_id=eq.%s&limit=1",
		url.QueryEscape(donorID), url.QueryEscape(churchID))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/donors", Err: err}
	}

	row, ok, err := decodeSingle[supabaseDonor](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode donor: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "donor", ID: donorID}
	}

	donor := row.toDomain()
	return &donor, nil
}

// CreateDonor inserts a donor and returns the stored row.
func (c *Client) CreateDonor(ctx context.Context, donor *domain.Donor) (*domain.Donor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDonor")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", donor.ChurchID))

	data := map[string]any{
		"id":                donor.ID,
		"church_id":         donor.ChurchID,
		"name":              donor.Name,
		"gift_aid_eligible": donor.GiftAidEligible,
		"is_active":         donor.IsActive,
	}
	if donor.Email != "" {
		data["email"] = donor.Email
	}
	if donor.Phone != "" {
		data["phone"] = donor.Phone
	}
	if donor.Address != "" {
		data["address"] = donor.Address
	}

	body, err := c.doPost(ctx, "donors", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/donors", Err: err}
	}

	row, ok, err := decodeSingle[supabaseDonor](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode created donor: %w", err)
	}
	if !ok {
		return donor, nil
	}

	created := row.toDomain()
	return &created, nil
}

// UpdateDonor patches the given columns on a donor.
func (c *Client) UpdateDonor(ctx context.Context, donorID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateDonor")
	defer span.End()
	span.SetAttributes(attribute.String("donor.id", donorID))

	path := fmt.Sprintf("donors?id=eq.%s", url.QueryEscape(donorID))
	if err := c.doPatch(ctx, path, updates); err != nil {
		return &domain.ErrExternalService{Service: "supabase/donors", Err: err}
	}
	return nil
}

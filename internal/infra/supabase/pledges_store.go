package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/stewardapp/steward-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Pledges (implements the pledge half of port.LedgerStore)
// ============================================================

// supabasePledge maps Supabase table columns to our domain.
type supabasePledge struct {
	ID        string  `json:"id"`
	ChurchID  string  `json:"church_id"`
	FundID    string  `json:"fund_id"`
	DonorID   string  `json:"donor_id"`
	Amount    float64 `json:"amount"`
	PledgedAt string  `json:"pledged_at"`
	DueDate   *string `json:"due_date"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
}

func (r supabasePledge) toDomain() domain.Pledge {
	p := domain.Pledge{
		ID:       r.ID,
		ChurchID: r.ChurchID,
		FundID:   r.FundID,
		DonorID:  r.DonorID,
		Amount:   r.Amount,
		Status:   r.Status,
	}
	p.PledgedAt, _ = domain.NormalizeDate(r.PledgedAt)
	if r.DueDate != nil {
		p.DueDate, _ = domain.NormalizeDate(*r.DueDate)
	}
	if r.Notes != nil {
		p.Notes = *r.Notes
	}
	return p
}

// ListPledges returns all of a church's pledges, pledge-date ascending.
func (c *Client) ListPledges(ctx context.Context, churchID string) ([]domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPledges")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	path := fmt.Sprintf("pledges?church_id=eq.%s&order=pledged_at.asc", url.QueryEscape(churchID))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/pledges", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.Pledge{}, nil
	}

	var rows []supabasePledge
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode pledges: %w", err)
	}

	pledges := make([]domain.Pledge, 0, len(rows))
	for _, r := range rows {
		pledges = append(pledges, r.toDomain())
	}
	return pledges, nil
}

// GetPledge fetches a single pledge scoped to a church.
func (c *Client) GetPledge(ctx context.Context, churchID, pledgeID string) (*domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPledge")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("pledge.id", pledgeID),
	)

	path := fmt.Sprintf("pledges?id=eq.%s&church_id=eq.%s&limit=1",
		url.QueryEscape(pledgeID), url.QueryEscape(churchID))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/pledges", Err: err}
	}

	row, ok, err := decodeSingle[supabasePledge](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pledge: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "pledge", ID: pledgeID}
	}

	pledge := row.toDomain()
	return &pledge, nil
}

// CreatePledge inserts a pledge and returns the stored row.
func (c *Client) CreatePledge(ctx context.Context, pledge *domain.Pledge) (*domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePledge")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", pledge.ChurchID),
		attribute.String("fund.id", pledge.FundID),
	)

	data := map[string]any{
		"id":         pledge.ID,
		"church_id":  pledge.ChurchID,
		"fund_id":    pledge.FundID,
		"donor_id":   pledge.DonorID,
		"amount":     pledge.Amount,
		"pledged_at": pledge.PledgedAt,
		"status":     pledge.Status,
	}
	if pledge.DueDate != "" {
		data["due_date"] = pledge.DueDate
	}
	if pledge.Notes != "" {
		data["notes"] = pledge.Notes
	}

	body, err := c.doPost(ctx, "pledges", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/pledges", Err: err}
	}

	row, ok, err := decodeSingle[supabasePledge](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode created pledge: %w", err)
	}
	if !ok {
		return pledge, nil
	}

	created := row.toDomain()
	return &created, nil
}

// UpdatePledgeStatus sets the stored status of a pledge.
func (c *Client) UpdatePledgeStatus(ctx context.Context, pledgeID, status string) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdatePledgeStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("pledge.id", pledgeID),
		attribute.String("pledge.status", status),
	)

	path := fmt.Sprintf("pledges?id=eq.%s", url.QueryEscape(pledgeID))
	if err := c.doPatch(ctx, path, map[string]any{"status": status}); err != nil {
		return &domain.ErrExternalService{Service: "supabase/pledges", Err: err}
	}
	return nil
}

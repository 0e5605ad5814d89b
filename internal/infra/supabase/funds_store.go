package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Churches & funds (implements the church/fund half of port.LedgerStore)
// ============================================================

// supabaseChurch maps Supabase table columns to our domain.
type supabaseChurch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

func (r supabaseChurch) toDomain() domain.Church {
	return domain.Church{
		ID:        r.ID,
		Name:      r.Name,
		Currency:  r.Currency,
		CreatedAt: r.CreatedAt,
	}
}

// GetChurch fetches a single church by id.
func (c *Client) GetChurch(ctx context.Context, churchID string) (*domain.Church, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetChurch")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	path := fmt.Sprintf("churches?id=eq.%s&limit=1", url.QueryEscape(churchID))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/churches", Err: err}
	}

	row, ok, err := decodeSingle[supabaseChurch](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode church: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "church", ID: churchID}
	}

	church := row.toDomain()
	return &church, nil
}

// ListChurches returns all churches. Used by the reconciliation job.
func (c *Client) ListChurches(ctx context.Context) ([]domain.Church, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListChurches")
	defer span.End()

	body, err := c.getWithResilience(ctx, "churches?order=created_at.asc")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/churches", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.Church{}, nil
	}

	var rows []supabaseChurch
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode churches: %w", err)
	}

	churches := make([]domain.Church, 0, len(rows))
	for _, r := range rows {
		churches = append(churches, r.toDomain())
	}
	return churches, nil
}

// supabaseFund maps Supabase table columns to our domain.
type supabaseFund struct {
	ID                string    `json:"id"`
	ChurchID          string    `json:"church_id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Description       string    `json:"description"`
	Balance           float64   `json:"balance"`
	IsActive          bool      `json:"is_active"`
	IsFundraising     bool      `json:"is_fundraising"`
	FundraisingTarget *float64  `json:"fundraising_target"`
	CreatedAt         time.Time `json:"created_at"`
}

func (r supabaseFund) toDomain() domain.Fund {
	return domain.Fund{
		ID:                r.ID,
		ChurchID:          r.ChurchID,
		Name:              r.Name,
		Type:              r.Type,
		Description:       r.Description,
		Balance:           r.Balance,
		IsActive:          r.IsActive,
		IsFundraising:     r.IsFundraising,
		FundraisingTarget: r.FundraisingTarget,
		CreatedAt:         r.CreatedAt,
	}
}

// ListFunds returns a church's funds, name-ascending.
func (c *Client) ListFunds(ctx context.Context, churchID string, activeOnly bool) ([]domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListFunds")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	path := fmt.Sprintf("funds?church_id=eq.%s&order=name.asc", url.QueryEscape(churchID))
	if activeOnly {
		path += "&is_active=eq.true"
	}
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/funds", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.Fund{}, nil
	}

	var rows []supabaseFund
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode funds: %w", err)
	}

	funds := make([]domain.Fund, 0, len(rows))
	for _, r := range rows {
		funds = append(funds, r.toDomain())
	}
	return funds, nil
}

// GetFund fetches a single fund scoped to a church.
func (c *Client) GetFund(ctx context.Context, churchID, fundID string) (*domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetFund")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("fund.id", fundID),
	)

	path := fmt.Sprintf("funds?id=eq.%s&church_id=eq.%s&limit=1",
		url.QueryEscape(fundID), url.QueryEscape(churchID))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/funds", Err: err}
	}

	row, ok, err := decodeSingle[supabaseFund](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fund: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "fund", ID: fundID}
	}

	fund := row.toDomain()
	return &fund, nil
}

// CreateFund inserts a fund and returns the stored row.
func (c *Client) CreateFund(ctx context.Context, fund *domain.Fund) (*domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateFund")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", fund.ChurchID))

	data := map[string]any{
		"id":             fund.ID,
		"church_id":      fund.ChurchID,
		"name":           fund.Name,
		"type":           fund.Type,
		"description":    fund.Description,
		"balance":        fund.Balance,
		"is_active":      fund.IsActive,
		"is_fundraising": fund.IsFundraising,
	}
	if fund.FundraisingTarget != nil {
		data["fundraising_target"] = *fund.FundraisingTarget
	}

	body, err := c.doPost(ctx, "funds", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/funds", Err: err}
	}

	row, ok, err := decodeSingle[supabaseFund](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode created fund: %w", err)
	}
	if !ok {
		return fund, nil // backend did not echo the row back
	}

	created := row.toDomain()
	return &created, nil
}

// UpdateFund patches the given columns on a fund.
func (c *Client) UpdateFund(ctx context.Context, fundID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateFund")
	defer span.End()
	span.SetAttributes(attribute.String("fund.id", fundID))

	path := fmt.Sprintf("funds?id=eq.%s", url.QueryEscape(fundID))
	if err := c.doPatch(ctx, path, updates); err != nil {
		return &domain.ErrExternalService{Service: "supabase/funds", Err: err}
	}
	return nil
}

// UpdateFundBalance applies a signed delta to the cached balance and returns
// the fund as stored afterwards. Read-modify-write; last write wins.
func (c *Client) UpdateFundBalance(ctx context.Context, fundID string, delta float64) (*domain.Fund, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateFundBalance")
	defer span.End()
	span.SetAttributes(
		attribute.String("fund.id", fundID),
		attribute.Float64("balance.delta", delta),
	)

	path := fmt.Sprintf("funds?id=eq.%s&limit=1", url.QueryEscape(fundID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/funds", Err: err}
	}

	row, ok, err := decodeSingle[supabaseFund](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fund: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "fund", ID: fundID}
	}

	newBalance := row.Balance + delta
	patchPath := fmt.Sprintf("funds?id=eq.%s", url.QueryEscape(fundID))
	if err := c.doPatch(ctx, patchPath, map[string]any{"balance": newBalance}); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/funds", Err: err}
	}

	fund := row.toDomain()
	fund.Balance = newBalance
	return &fund, nil
}

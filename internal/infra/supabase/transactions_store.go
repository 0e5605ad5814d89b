package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/stewardapp/steward-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Transactions (implements the transaction half of port.LedgerStore)
// ============================================================

// supabaseTransaction maps Supabase table columns to our domain.
type supabaseTransaction struct {
	ID          string  `json:"id"`
	ChurchID    string  `json:"church_id"`
	FundID      string  `json:"fund_id"`
	DonorID     *string `json:"donor_id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
}

func (r supabaseTransaction) toDomain() domain.Transaction {
	tx := domain.Transaction{
		ID:          r.ID,
		ChurchID:    r.ChurchID,
		FundID:      r.FundID,
		Type:        r.Type,
		Amount:      r.Amount,
		Description: r.Description,
	}
	if r.DonorID != nil {
		tx.DonorID = *r.DonorID
	}
	if r.Category != nil {
		tx.Category = *r.Category
	}
	// Rows written before date normalization existed may carry timestamps.
	tx.Date, _ = domain.NormalizeDate(r.Date)
	return tx
}

// ListTransactions returns a church's transactions ordered by date ascending,
// optionally narrowed by fund, donor, type and date range.
func (c *Client) ListTransactions(ctx context.Context, churchID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	path := fmt.Sprintf("transactions?church_id=eq.%s", url.QueryEscape(churchID))
	if filter.FundID != "" {
		path += "&fund_id=eq." + url.QueryEscape(filter.FundID)
	}
	if filter.DonorID != "" {
		path += "&donor_id=eq." + url.QueryEscape(filter.DonorID)
	}
	if filter.Type != "" {
		path += "&type=eq." + url.QueryEscape(filter.Type)
	}

	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.Transaction{}, nil
	}

	var rows []supabaseTransaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	// The table still carries pre-normalization rows in assorted formats, so
	// server-side ordering and range filters over the raw date column are not
	// chronological. Filter and sort here, after NormalizeDate.
	transactions := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		tx := r.toDomain()
		if filter.FromDate != "" && tx.Date < filter.FromDate {
			continue
		}
		if filter.ToDate != "" && tx.Date > filter.ToDate {
			continue
		}
		transactions = append(transactions, tx)
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Date != transactions[j].Date {
			return transactions[i].Date < transactions[j].Date
		}
		return transactions[i].ID < transactions[j].ID
	})
	return transactions, nil
}

// GetTransaction fetches a single transaction scoped to a church.
func (c *Client) GetTransaction(ctx context.Context, churchID, transactionID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("transaction.id", transactionID),
	)

	path := fmt.Sprintf("transactions?id=eq.%s&church_id=eq.%s&limit=1",
		url.QueryEscape(transactionID), url.QueryEscape(churchID))
	body, err := c.getWithResilience(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	row, ok, err := decodeSingle[supabaseTransaction](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}

	tx := row.toDomain()
	return &tx, nil
}

// CreateTransaction inserts a transaction and returns the stored row.
func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", tx.ChurchID),
		attribute.String("fund.id", tx.FundID),
	)

	data := map[string]any{
		"id":          tx.ID,
		"church_id":   tx.ChurchID,
		"fund_id":     tx.FundID,
		"type":        tx.Type,
		"amount":      tx.Amount,
		"date":        tx.Date,
		"description": tx.Description,
	}
	if tx.DonorID != "" {
		data["donor_id"] = tx.DonorID
	}
	if tx.Category != "" {
		data["category"] = tx.Category
	}

	body, err := c.doPost(ctx, "transactions", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	row, ok, err := decodeSingle[supabaseTransaction](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode created transaction: %w", err)
	}
	if !ok {
		return tx, nil
	}

	created := row.toDomain()
	return &created, nil
}

// DeleteTransaction removes a transaction scoped to a church.
func (c *Client) DeleteTransaction(ctx context.Context, churchID, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("church.id", churchID),
		attribute.String("transaction.id", transactionID),
	)

	path := fmt.Sprintf("transactions?id=eq.%s&church_id=eq.%s",
		url.QueryEscape(transactionID), url.QueryEscape(churchID))
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return nil
}

package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stewardapp/steward-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// CSV import
// ============================================================

// Expected header: date,type,amount,fund,donor,description.
// donor is optional; fund and donor are matched by name, case-insensitively.

// ImportTransactions reads CSV rows and creates one transaction per valid
// row, adjusting fund balances as it goes. Invalid rows are skipped with a
// per-row reason; the import never aborts midway on bad data.
func (s *LedgerService) ImportTransactions(ctx context.Context, churchID string, r io.Reader) (*domain.ImportResult, error) {
	ctx, span := tracer.Start(ctx, "LedgerService.ImportTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("church.id", churchID))

	funds, err := s.store.ListFunds(ctx, churchID, true)
	if err != nil {
		return nil, err
	}
	donors, err := s.store.ListDonors(ctx, churchID, false)
	if err != nil {
		return nil, err
	}

	fundsByName := make(map[string]domain.Fund, len(funds))
	for _, f := range funds {
		fundsByName[strings.ToLower(f.Name)] = f
	}
	donorsByName := make(map[string]domain.Donor, len(donors))
	for _, d := range donors {
		donorsByName[strings.ToLower(d.Name)] = d
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validate per row; description may hold commas when quoted
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &domain.ErrValidation{Field: "file", Message: "empty or unreadable CSV"}
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{Rows: []domain.ImportRowResult{}}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Skipped++
			result.Rows = append(result.Rows, domain.ImportRowResult{
				Row: rowNum, Reason: "malformed CSV row",
			})
			continue
		}

		outcome := s.importRow(ctx, churchID, record, cols, fundsByName, donorsByName)
		outcome.Row = rowNum
		if outcome.Imported {
			result.Imported++
		} else {
			result.Skipped++
		}
		result.Rows = append(result.Rows, outcome)
	}

	s.metrics.AddImportedRows(result.Imported, result.Skipped)
	s.logger.Info("csv import finished",
		zap.String("church_id", churchID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// columnIndex maps the required header names to their positions.
type columnIndex struct {
	date, typ, amount, fund, donor, description int
}

func mapColumns(header []string) (columnIndex, error) {
	idx := columnIndex{date: -1, typ: -1, amount: -1, fund: -1, donor: -1, description: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			idx.date = i
		case "type":
			idx.typ = i
		case "amount":
			idx.amount = i
		case "fund":
			idx.fund = i
		case "donor":
			idx.donor = i
		case "description":
			idx.description = i
		}
	}
	if idx.date < 0 || idx.typ < 0 || idx.amount < 0 || idx.fund < 0 {
		return idx, &domain.ErrValidation{
			Field:   "file",
			Message: "header must contain date, type, amount and fund columns",
		}
	}
	return idx, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (s *LedgerService) importRow(ctx context.Context, churchID string, record []string, cols columnIndex, fundsByName map[string]domain.Fund, donorsByName map[string]domain.Donor) domain.ImportRowResult {
	date, ok := domain.NormalizeDate(field(record, cols.date))
	if !ok {
		return domain.ImportRowResult{Reason: fmt.Sprintf("unrecognized date %q", field(record, cols.date))}
	}

	typ := strings.ToLower(field(record, cols.typ))
	if typ != domain.TransactionIncome && typ != domain.TransactionExpense {
		return domain.ImportRowResult{Reason: fmt.Sprintf("unknown type %q", field(record, cols.typ))}
	}

	amount, err := strconv.ParseFloat(field(record, cols.amount), 64)
	if err != nil || amount <= 0 {
		return domain.ImportRowResult{Reason: fmt.Sprintf("invalid amount %q", field(record, cols.amount))}
	}

	fundName := field(record, cols.fund)
	fund, ok := fundsByName[strings.ToLower(fundName)]
	if !ok {
		return domain.ImportRowResult{Reason: fmt.Sprintf("unknown fund %q", fundName)}
	}

	// Donor is best-effort: an unknown name does not block the row.
	donorID := ""
	if name := field(record, cols.donor); name != "" {
		if donor, ok := donorsByName[strings.ToLower(name)]; ok {
			donorID = donor.ID
		}
	}

	created, err := s.CreateTransaction(ctx, churchID, &domain.CreateTransactionRequest{
		FundID:      fund.ID,
		DonorID:     donorID,
		Type:        typ,
		Amount:      amount,
		Date:        date,
		Description: field(record, cols.description),
	})
	if err != nil {
		return domain.ImportRowResult{Reason: err.Error()}
	}

	return domain.ImportRowResult{Imported: true, TransactionID: created.ID}
}

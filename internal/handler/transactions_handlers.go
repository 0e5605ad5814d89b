package handler

import (
	"net/http"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxImportSize bounds an uploaded CSV at 5 MiB.
const maxImportSize = 5 << 20

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/transactions")
		defer span.End()

		q := r.URL.Query()
		filter := domain.TransactionFilter{
			FundID:   q.Get("fund_id"),
			DonorID:  q.Get("donor_id"),
			Type:     q.Get("type"),
			FromDate: q.Get("from"),
			ToDate:   q.Get("to"),
		}
		if filter.FromDate != "" {
			norm, ok := domain.NormalizeDate(filter.FromDate)
			if !ok {
				writeError(w, http.StatusBadRequest, "unrecognized from date")
				return
			}
			filter.FromDate = norm
		}
		if filter.ToDate != "" {
			norm, ok := domain.NormalizeDate(filter.ToDate)
			if !ok {
				writeError(w, http.StatusBadRequest, "unrecognized to date")
				return
			}
			filter.ToDate = norm
		}

		transactions, err := svc.ListTransactions(ctx, chi.URLParam(r, "churchId"), filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

func getTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/transactions/{transactionId}")
		defer span.End()

		tx, err := svc.GetTransaction(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "transactionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func createTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/churches/{churchId}/transactions")
		defer span.End()

		var req domain.CreateTransactionRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("fund.id", req.FundID))

		tx, err := svc.CreateTransaction(ctx, chi.URLParam(r, "churchId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func deleteTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/churches/{churchId}/transactions/{transactionId}")
		defer span.End()

		if err := svc.DeleteTransaction(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "transactionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
	}
}

// importTransactionsHandler accepts a multipart upload with a "file" part
// holding the CSV.
func importTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/churches/{churchId}/transactions/import")
		defer span.End()

		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			writeError(w, http.StatusBadRequest, "expected multipart form with a file part")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file part")
			return
		}
		defer file.Close()

		result, err := svc.ImportTransactions(ctx, chi.URLParam(r, "churchId"), file)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func categorizeHandler(svc *service.CategorizeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/churches/{churchId}/transactions/categorize")
		defer span.End()

		var req struct {
			Items []domain.CategorizeItem `json:"items"`
		}
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		suggestions, err := svc.Suggest(ctx, chi.URLParam(r, "churchId"), req.Items)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
	}
}

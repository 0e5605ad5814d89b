package handler

import (
	"net/http"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Overview & integrity
// ============================================================

func overviewHandler(svc *service.OverviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/overview")
		defer span.End()

		churchID := chi.URLParam(r, "churchId")
		span.SetAttributes(attribute.String("church.id", churchID))

		overviews, err := svc.FundOverviews(ctx, churchID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overviews)
	}
}

func balanceIntegrityHandler(svc *service.BalanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/balance-integrity")
		defer span.End()

		results, err := svc.CheckBalanceIntegrity(ctx, chi.URLParam(r, "churchId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// ============================================================
// Funds
// ============================================================

func listFundsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/funds")
		defer span.End()

		activeOnly := r.URL.Query().Get("include_inactive") != "true"
		funds, err := svc.ListFunds(ctx, chi.URLParam(r, "churchId"), activeOnly)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, funds)
	}
}

func getFundHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/funds/{fundId}")
		defer span.End()

		fund, err := svc.GetFund(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "fundId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fund)
	}
}

func fundLedgerHandler(svc *service.BalanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/funds/{fundId}/ledger")
		defer span.End()

		rows, err := svc.FundLedger(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "fundId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createFundHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/churches/{churchId}/funds")
		defer span.End()

		var req domain.CreateFundRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		fund, err := svc.CreateFund(ctx, chi.URLParam(r, "churchId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, fund)
	}
}

func updateFundHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/churches/{churchId}/funds/{fundId}")
		defer span.End()

		var req domain.UpdateFundRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		fund, err := svc.UpdateFund(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "fundId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fund)
	}
}

func deactivateFundHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/churches/{churchId}/funds/{fundId}")
		defer span.End()

		if err := svc.DeactivateFund(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "fundId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "fund deactivated"})
	}
}

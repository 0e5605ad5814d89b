package handler

import (
	"net/http"

	"github.com/stewardapp/steward-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Reports
// ============================================================

func givingStatementHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/reports/giving-statement/{donorId}")
		defer span.End()

		q := r.URL.Query()
		statement, err := svc.GivingStatement(ctx,
			chi.URLParam(r, "churchId"),
			chi.URLParam(r, "donorId"),
			q.Get("from"), q.Get("to"),
		)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, statement)
	}
}

func giftAidHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/reports/gift-aid")
		defer span.End()

		q := r.URL.Query()
		report, err := svc.GiftAidReport(ctx, chi.URLParam(r, "churchId"), q.Get("from"), q.Get("to"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func periodSummaryHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/reports/summary")
		defer span.End()

		q := r.URL.Query()
		summary, err := svc.PeriodSummary(ctx, chi.URLParam(r, "churchId"), q.Get("from"), q.Get("to"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

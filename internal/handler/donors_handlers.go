package handler

import (
	"net/http"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Donors
// ============================================================

func listDonorsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/donors")
		defer span.End()

		activeOnly := r.URL.Query().Get("include_inactive") != "true"
		donors, err := svc.ListDonors(ctx, chi.URLParam(r, "churchId"), activeOnly)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, donors)
	}
}

func getDonorHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/donors/{donorId}")
		defer span.End()

		donor, err := svc.GetDonor(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "donorId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, donor)
	}
}

func createDonorHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/churches/{churchId}/donors")
		defer span.End()

		var req domain.CreateDonorRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		donor, err := svc.CreateDonor(ctx, chi.URLParam(r, "churchId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, donor)
	}
}

func updateDonorHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/churches/{churchId}/donors/{donorId}")
		defer span.End()

		var req domain.UpdateDonorRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		donor, err := svc.UpdateDonor(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "donorId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, donor)
	}
}

func deactivateDonorHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/churches/{churchId}/donors/{donorId}")
		defer span.End()

		if err := svc.DeactivateDonor(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "donorId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "donor deactivated"})
	}
}

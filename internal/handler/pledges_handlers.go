package handler

import (
	"net/http"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Pledges
// ============================================================

func listPledgesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/churches/{churchId}/pledges")
		defer span.End()

		pledges, err := svc.ListPledges(ctx, chi.URLParam(r, "churchId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pledges)
	}
}

func createPledgeHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/churches/{churchId}/pledges")
		defer span.End()

		var req domain.CreatePledgeRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		pledge, err := svc.CreatePledge(ctx, chi.URLParam(r, "churchId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, pledge)
	}
}

func updatePledgeStatusHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/churches/{churchId}/pledges/{pledgeId}/status")
		defer span.End()

		var req struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		pledge, err := svc.UpdatePledgeStatus(ctx, chi.URLParam(r, "churchId"), chi.URLParam(r, "pledgeId"), req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pledge)
	}
}

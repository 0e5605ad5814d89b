package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/port"
	"github.com/stewardapp/steward-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router dispatches to.
type Services struct {
	Overview   *service.OverviewService
	Ledger     *service.LedgerService
	Balance    *service.BalanceService
	Reports    *service.ReportService
	Categorize *service.CategorizeService
	Auth       *service.AuthService
	Store      port.LedgerStore
}

// NewRouter creates the HTTP router with all routes and middleware.
// Tenant-scoped routes live under /v1/churches/{churchId} and sit behind
// JWT validation plus the church-scope check.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Counter snapshot for dashboards that do not scrape Prometheus.
		r.Get("/metrics/ops", opsMetricsHandler(metrics))

		// =============================================
		// Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// Church-scoped resources (protected)
		// =============================================
		r.Route("/churches/{churchId}", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))
			r.Use(ChurchScopeMiddleware(logger))

			// Overview & integrity
			r.Get("/overview", overviewHandler(svcs.Overview, logger))
			r.Get("/balance-integrity", balanceIntegrityHandler(svcs.Balance, logger))

			// Funds
			r.Get("/funds", listFundsHandler(svcs.Ledger, logger))
			r.Get("/funds/{fundId}", getFundHandler(svcs.Ledger, logger))
			r.Get("/funds/{fundId}/ledger", fundLedgerHandler(svcs.Balance, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleEditor, logger))
				r.Post("/funds", createFundHandler(svcs.Ledger, logger))
				r.Patch("/funds/{fundId}", updateFundHandler(svcs.Ledger, logger))
			})
			r.With(RequireRole(domain.RoleAdmin, logger)).
				Delete("/funds/{fundId}", deactivateFundHandler(svcs.Ledger, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(svcs.Ledger, logger))
			r.Get("/transactions/{transactionId}", getTransactionHandler(svcs.Ledger, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleEditor, logger))
				r.Post("/transactions", createTransactionHandler(svcs.Ledger, logger))
				r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Ledger, logger))
				r.Post("/transactions/import", importTransactionsHandler(svcs.Ledger, logger))
				r.Post("/transactions/categorize", categorizeHandler(svcs.Categorize, logger))
			})

			// Donors
			r.Get("/donors", listDonorsHandler(svcs.Ledger, logger))
			r.Get("/donors/{donorId}", getDonorHandler(svcs.Ledger, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleEditor, logger))
				r.Post("/donors", createDonorHandler(svcs.Ledger, logger))
				r.Patch("/donors/{donorId}", updateDonorHandler(svcs.Ledger, logger))
			})
			r.With(RequireRole(domain.RoleAdmin, logger)).
				Delete("/donors/{donorId}", deactivateDonorHandler(svcs.Ledger, logger))

			// Pledges
			r.Get("/pledges", listPledgesHandler(svcs.Ledger, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleEditor, logger))
				r.Post("/pledges", createPledgeHandler(svcs.Ledger, logger))
				r.Patch("/pledges/{pledgeId}/status", updatePledgeStatusHandler(svcs.Ledger, logger))
			})

			// Reports
			r.Get("/reports/giving-statement/{donorId}", givingStatementHandler(svcs.Reports, logger))
			r.Get("/reports/gift-aid", giftAidHandler(svcs.Reports, logger))
			r.Get("/reports/summary", periodSummaryHandler(svcs.Reports, logger))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(store port.LedgerStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		start := time.Now()
		_, err := store.ListChurches(ctx)
		latency := time.Since(start)

		status := domain.HealthStatus{
			Status: "healthy",
			Services: []domain.ServiceHealth{{
				Name:        "store",
				Status:      "healthy",
				LatencyMs:   latency.Milliseconds(),
				LastChecked: time.Now().UTC().Format(time.RFC3339),
			}},
		}
		code := http.StatusOK
		if err != nil {
			logger.Warn("healthz: store probe failed", zap.Error(err))
			status.Status = "unhealthy"
			status.Services[0].Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func opsMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}

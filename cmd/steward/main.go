package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stewardapp/steward-go/internal/config"
	"github.com/stewardapp/steward-go/internal/domain"
	"github.com/stewardapp/steward-go/internal/handler"
	"github.com/stewardapp/steward-go/internal/infra/cache"
	"github.com/stewardapp/steward-go/internal/infra/client"
	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/infra/resilience"
	"github.com/stewardapp/steward-go/internal/infra/supabase"
	"github.com/stewardapp/steward-go/internal/port"
	"github.com/stewardapp/steward-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.String("reconcile_cron", cfg.ReconcileCronSpec),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "steward")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	overviewCache := cache.New[[]domain.FundOverview](cfg.CacheTTL)
	defer overviewCache.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	supabaseCB := resilience.NewCircuitBreaker("supabase")
	geminiCB := resilience.NewCircuitBreaker("gemini")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		supabaseCB,
		resilienceCfg,
		logger,
	)

	var categorizer port.Categorizer
	if cfg.GeminiAPIKey != "" {
		gemini, err := client.NewGeminiCategorizer(
			context.Background(),
			cfg.GeminiAPIKey,
			cfg.GeminiModel,
			geminiCB,
			resilienceCfg,
			logger,
		)
		if err != nil {
			logger.Fatal("failed to init categorizer", zap.Error(err))
		}
		categorizer = gemini
		logger.Info("categorizer enabled", zap.String("model", cfg.GeminiModel))
	} else {
		categorizer = client.DisabledCategorizer{}
		logger.Warn("GEMINI_API_KEY not set, categorization suggestions unavailable")
	}

	// --- Services ---
	overviewSvc := service.NewOverviewService(store, overviewCache, metrics, logger, cfg.MaxConcurrency)
	ledgerSvc := service.NewLedgerService(store, overviewCache, metrics, logger)
	balanceSvc := service.NewBalanceService(store, logger)
	reportSvc := service.NewReportService(store, logger)
	categorizeSvc := service.NewCategorizeService(store, categorizer, metrics, logger)
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	// --- Background reconciliation ---
	reconciler := service.NewReconciler(store, balanceSvc, metrics, logger, cfg.ReconcileTimeout)
	if err := reconciler.Start(cfg.ReconcileCronSpec); err != nil {
		logger.Fatal("failed to schedule reconciler", zap.Error(err))
	}
	defer reconciler.Stop()

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Overview:   overviewSvc,
		Ledger:     ledgerSvc,
		Balance:    balanceSvc,
		Reports:    reportSvc,
		Categorize: categorizeSvc,
		Auth:       authSvc,
		Store:      store,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

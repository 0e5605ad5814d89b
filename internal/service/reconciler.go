package service

import (
	"context"
	"time"

	"github.com/stewardapp/steward-go/internal/infra/observability"
	"github.com/stewardapp/steward-go/internal/port"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler periodically recomputes every active fund's balance from its
// transaction log and compares it with the cached scalar. Read-only: drift is
// logged and counted, never corrected automatically.
type Reconciler struct {
	store   port.LedgerStore
	balance *BalanceService
	metrics *observability.Metrics
	logger  *zap.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewReconciler creates a reconciler; call Start to schedule it.
func NewReconciler(store port.LedgerStore, balance *BalanceService, metrics *observability.Metrics, logger *zap.Logger, timeout time.Duration) *Reconciler {
	return &Reconciler{
		store:   store,
		balance: balance,
		metrics: metrics,
		logger:  logger,
		cron:    cron.New(),
		timeout: timeout,
	}
}

// Start schedules the sweep with a cron spec (e.g. "0 3 * * *").
func (r *Reconciler) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, r.sweep)
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("balance reconciler scheduled", zap.String("spec", spec))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (r *Reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// sweep runs one reconciliation pass over all churches.
func (r *Reconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	churches, err := r.store.ListChurches(ctx)
	if err != nil {
		r.logger.Error("reconciler: listing churches failed", zap.Error(err))
		return
	}

	var checked, drifted int
	for _, church := range churches {
		results, err := r.balance.CheckBalanceIntegrity(ctx, church.ID)
		if err != nil {
			r.logger.Error("reconciler: integrity check failed",
				zap.String("church_id", church.ID),
				zap.Error(err),
			)
			continue
		}
		for _, res := range results {
			checked++
			if !res.Consistent {
				drifted++
				r.metrics.IncrBalanceDrift(church.ID)
				r.logger.Warn("reconciler: fund balance drift",
					zap.String("church_id", church.ID),
					zap.String("fund_id", res.FundID),
					zap.Float64("drift", res.Drift),
				)
			}
		}
	}

	r.logger.Info("reconciliation sweep finished",
		zap.Int("churches", len(churches)),
		zap.Int("funds_checked", checked),
		zap.Int("funds_drifted", drifted),
		zap.Duration("took", time.Since(start)),
	)
}

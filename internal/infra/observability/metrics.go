package observability

import (
	"time"

	"github.com/stewardapp/steward-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	externalErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	requestsTotal    *prometheus.CounterVec
	balanceDrift     *prometheus.CounterVec
	importedRows     *prometheus.CounterVec
	categorizerCalls *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "steward_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		balanceDrift: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_balance_drift_total",
				Help: "Funds found with a cached balance diverging from the transaction log.",
			},
			[]string{"church"},
		),
		importedRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_import_rows_total",
				Help: "CSV rows processed by outcome.",
			},
			[]string{"outcome"},
		),
		categorizerCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_categorizer_calls_total",
				Help: "Calls to the AI categorizer by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrBalanceDrift records a fund whose cached balance disagrees with its
// transaction log. Labeled by church so one noisy tenant is visible.
func (m *Metrics) IncrBalanceDrift(churchID string) {
	m.balanceDrift.WithLabelValues(churchID).Inc()
}

// AddImportedRows records CSV import outcomes.
func (m *Metrics) AddImportedRows(imported, skipped int) {
	m.importedRows.WithLabelValues("imported").Add(float64(imported))
	m.importedRows.WithLabelValues("skipped").Add(float64(skipped))
}

// IncrCategorizerCall records one categorizer invocation.
func (m *Metrics) IncrCategorizerCall(outcome string) {
	m.categorizerCalls.WithLabelValues(outcome).Inc()
}

// GetOpsSnapshot returns a snapshot of service counters suitable for the
// GET /v1/metrics/ops endpoint.
func (m *Metrics) GetOpsSnapshot() *domain.OpsMetrics {
	// Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "overview")
	cacheMisses := getCounterValue(m.cacheMisses, "overview")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	// Drift and categorizer counters carry dynamic labels; sum via Gather.
	drifts := sumCounter(m.Registry, "steward_balance_drift_total")

	return &domain.OpsMetrics{
		TotalRequests:    int64(totalRequests),
		ErrorRate:        errorRate,
		CacheHitRate:     cacheHitRate,
		BalanceDrifts:    int64(drifts),
		RowsImported:     int64(getCounterValue(m.importedRows, "imported")),
		CategorizerCalls: int64(sumCounter(m.Registry, "steward_categorizer_calls_total")),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounter gathers the registry and sums every series of a counter family.
func sumCounter(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if metric.Counter != nil && metric.Counter.Value != nil {
				total += *metric.Counter.Value
			}
		}
	}
	return total
}

package domain

// ============================================================
// Health & operational metrics
// ============================================================

// ServiceHealth is one dependency's health entry.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // healthy, degraded, unhealthy
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthStatus is the aggregate response of GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// OpsMetrics is a point-in-time snapshot of service counters, served by
// GET /v1/metrics/ops for dashboards that do not scrape Prometheus.
type OpsMetrics struct {
	TotalRequests    int64   `json:"total_requests"`
	ErrorRate        float64 `json:"error_rate"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	BalanceDrifts    int64   `json:"balance_drifts"`
	RowsImported     int64   `json:"rows_imported"`
	CategorizerCalls int64   `json:"categorizer_calls"`
}

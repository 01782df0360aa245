package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// Feed download metrics
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_feed_fetches_total",
			Help: "Total number of feed downloads",
		},
		[]string{"status"},
	)

	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nfl_feed_fetch_duration_seconds",
			Help:    "Duration of feed downloads in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	FeedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nfl_feed_bytes_total",
			Help: "Decompressed bytes written from feed downloads",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfl_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfl_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Reconciliation metrics
	RowsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_rows_processed_total",
			Help: "Feed rows processed by outcome",
		},
		[]string{"family", "outcome"},
	)

	// Family run metrics
	FamilyRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_family_runs_total",
			Help: "Total number of feed family runs",
		},
		[]string{"family", "status"},
	)

	FamilyRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_family_run_duration_seconds",
			Help:    "Duration of feed family runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"family"},
	)

	LastSuccessfulRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nfl_last_successful_run_timestamp",
			Help: "Timestamp of the last family run without errors",
		},
		[]string{"family"},
	)

	// Cache metrics
	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nfl_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nfl_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nfl_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordFetch records a feed download
func RecordFetch(status string, duration float64, bytes int64) {
	FeedFetchesTotal.WithLabelValues(status).Inc()
	FeedFetchDuration.Observe(duration)
	if bytes > 0 {
		FeedBytesTotal.Add(float64(bytes))
	}
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordRow records the outcome of one reconciled row
func RecordRow(family, outcome string) {
	RowsProcessedTotal.WithLabelValues(family, outcome).Inc()
}

// RecordFamilyRun records a completed family run
func RecordFamilyRun(family, status string, duration float64) {
	FamilyRunsTotal.WithLabelValues(family, status).Inc()
	FamilyRunDuration.WithLabelValues(family).Observe(duration)

	if status == "success" {
		LastSuccessfulRun.WithLabelValues(family).SetToCurrentTime()
	}
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

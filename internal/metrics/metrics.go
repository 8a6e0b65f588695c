// Package metrics provides the centralized Prometheus metrics registry for
// the performance computation pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AssetsComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asset_horizon",
		Name:      "assets_computed_total",
		Help:      "Total number of assets run through the performance pipeline",
	}, []string{"asset_type"})
	RowsUpsertedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asset_horizon",
		Name:      "performance_rows_upserted_total",
		Help:      "Total number of performance rows upserted by strategy",
	}, []string{"strategy"})
	BatchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "asset_horizon",
		Name:      "batch_failures_total",
		Help:      "Total number of write batches dropped after exhausting retries",
	})
	FetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asset_horizon",
		Name:      "fetch_requests_total",
		Help:      "Total number of provider fetch requests by outcome",
	}, []string{"status"})
)

// Gauge metrics
var (
	LastComputeAssets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "asset_horizon",
		Name:      "last_compute_assets",
		Help:      "Number of assets processed by the most recent computation run",
	})
	LastIngestPoints = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "asset_horizon",
		Name:      "last_ingest_points",
		Help:      "Number of price points upserted by the most recent ingestion run",
	})
)

// Histogram metrics
var (
	ComputeRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "asset_horizon",
		Name:      "compute_run_duration_seconds",
		Help:      "Duration of full computation runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	IngestRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "asset_horizon",
		Name:      "ingest_run_duration_seconds",
		Help:      "Duration of ingestion runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	FetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "asset_horizon",
		Name:      "fetch_latency_seconds",
		Help:      "Latency of provider fetch requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(AssetsComputedTotal)
		registry.MustRegister(RowsUpsertedTotal)
		registry.MustRegister(BatchFailuresTotal)
		registry.MustRegister(FetchRequestsTotal)

		// Register gauge metrics
		registry.MustRegister(LastComputeAssets)
		registry.MustRegister(LastIngestPoints)

		// Register histogram metrics
		registry.MustRegister(ComputeRunDuration)
		registry.MustRegister(IngestRunDuration)
		registry.MustRegister(FetchLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAssetComputed records one asset passing through the pipeline.
func RecordAssetComputed(assetType string) {
	AssetsComputedTotal.WithLabelValues(assetType).Inc()
}

// RecordRowsUpserted records persisted performance rows for a strategy.
func RecordRowsUpserted(strategy string, n int) {
	RowsUpsertedTotal.WithLabelValues(strategy).Add(float64(n))
}

// RecordBatchFailure records a write batch dropped after exhausting retries.
func RecordBatchFailure() {
	BatchFailuresTotal.Inc()
}

// RecordComputeRun records a completed computation run.
func RecordComputeRun(durationSeconds float64) {
	ComputeRunDuration.Observe(durationSeconds)
}

// RecordIngestRun records a completed ingestion run.
func RecordIngestRun(durationSeconds float64, points int) {
	IngestRunDuration.Observe(durationSeconds)
	LastIngestPoints.Set(float64(points))
}

// RecordFetch records a provider fetch request and its latency.
func RecordFetch(status string, durationSeconds float64) {
	FetchRequestsTotal.WithLabelValues(status).Inc()
	FetchLatency.Observe(durationSeconds)
}

// UpdateLastComputeAssets updates the last-run asset count gauge.
func UpdateLastComputeAssets(count float64) {
	LastComputeAssets.Set(count)
}

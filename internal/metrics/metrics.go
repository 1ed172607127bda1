package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections prometheus.Gauge

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Redis metrics
	RedisOperationDuration *prometheus.HistogramVec
	RedisOperationsTotal   *prometheus.CounterVec

	// Feed metrics
	FeedBatches            *prometheus.CounterVec
	FeedBatchDuration      *prometheus.HistogramVec
	FeedItemsServed        *prometheus.CounterVec
	FeedSourceErrors       *prometheus.CounterVec
	FeedErrors             *prometheus.CounterVec
	SponsoredInsertions    *prometheus.CounterVec
	SessionGuardRejections prometheus.Counter

	// Application metrics
	App *ApplicationMetrics
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path"},
			),
			HTTPActiveConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "http_active_requests",
					Help: "Number of requests currently being served",
				},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of requests rejected by the rate limiter",
				},
				[]string{"path"},
			),

			RedisOperationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "redis_operation_duration_seconds",
					Help:    "Redis operation latency in seconds",
					Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
				},
				[]string{"operation"},
			),
			RedisOperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redis_operations_total",
					Help: "Total number of Redis operations",
				},
				[]string{"operation", "status"},
			),

			FeedBatches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_batches_total",
					Help: "Feed batches served by tab and ranking path",
				},
				[]string{"tab", "path"},
			),
			FeedBatchDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_batch_duration_seconds",
					Help:    "Time spent assembling a feed batch",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"tab"},
			),
			FeedItemsServed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_items_served_total",
					Help: "Organic items served by ranking path",
				},
				[]string{"path"},
			),
			FeedSourceErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_candidate_source_errors_total",
					Help: "Personalized candidate queries that failed and were skipped",
				},
				[]string{"source"},
			),
			FeedErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_errors_total",
					Help: "Feed requests that failed",
				},
				[]string{"tab"},
			),
			SponsoredInsertions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_sponsored_total",
					Help: "Sponsored slot outcomes per batch",
				},
				[]string{"result"},
			),
			SessionGuardRejections: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "feed_session_guard_rejections_total",
					Help: "Batch requests rejected because one was already loading",
				},
			),

			App: newApplicationMetrics(),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}

// Package observability provides logging, metrics, and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheRequests counts content-cache lookups by key and outcome (hit/miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_requests_total",
		Help: "Content cache lookups by key and outcome",
	}, []string{"key", "outcome"})

	// CacheInvalidations counts write-triggered cache evictions by key.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_invalidations_total",
		Help: "Write-triggered cache evictions by key",
	}, []string{"key"})

	// DatabaseQueryLatency records database query latency by statement kind.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// ImageVariantDuration records how long variant generation takes per size name.
	ImageVariantDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_image_variant_duration_seconds",
		Help:    "Image variant generation duration by size name",
		Buckets: prometheus.DefBuckets,
	}, []string{"size"})

	// ScheduledPostsPublished counts posts promoted by the scheduled publisher.
	ScheduledPostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_scheduled_posts_published_total",
		Help: "Posts promoted from scheduled to published",
	})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

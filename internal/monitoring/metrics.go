package monitoring

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "learnstyle"

// Metrics holds application metrics. Collectors live on a private registry so
// several instances can coexist in one process (tests, embedded servers).
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	predictLatency  prometheus.Histogram
	errors          *prometheus.CounterVec
	cache           *prometheus.CounterVec
	rateLimitBlocks *prometheus.CounterVec
	rateLimitEvents *prometheus.CounterVec

	// Snapshot counters for the health endpoint
	requestCount int64
	errorCount   int64
	cacheHits    int64
	cacheMisses  int64
	StartTime    time.Time
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		StartTime: time.Now(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Learning style predictions by label.",
		}, []string{"label"}),
		predictLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Time spent aggregating and classifying one submission.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Application errors by category.",
		}, []string{"category"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Assessment cache lookups by result.",
		}, []string{"result"}),
		rateLimitBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_blocks_total",
			Help:      "Requests rejected by the rate limiter, by scope.",
		}, []string{"scope"}),
		rateLimitEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_backend_events_total",
			Help:      "Rate limiter backend events (redis_error, fallback).",
		}, []string{"event"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.predictions,
		m.predictLatency,
		m.errors,
		m.cache,
		m.rateLimitBlocks,
		m.rateLimitEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest records one completed HTTP request
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	atomic.AddInt64(&m.requestCount, 1)
	if status >= 400 {
		atomic.AddInt64(&m.errorCount, 1)
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPrediction records one classified submission
func (m *Metrics) RecordPrediction(label string, duration time.Duration) {
	m.predictions.WithLabelValues(label).Inc()
	m.predictLatency.Observe(duration.Seconds())
}

// RecordError records an application error by category
func (m *Metrics) RecordError(category string) {
	m.errors.WithLabelValues(category).Inc()
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.cacheHits, 1)
	m.cache.WithLabelValues("hit").Inc()
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.cacheMisses, 1)
	m.cache.WithLabelValues("miss").Inc()
}

// IncrementRateLimitBlock increments rate limit blocks for a scope (ip, endpoint name)
func (m *Metrics) IncrementRateLimitBlock(scope string) {
	m.rateLimitBlocks.WithLabelValues(scope).Inc()
}

// IncrementRateLimitRedisError increments Redis error count for rate limiting
func (m *Metrics) IncrementRateLimitRedisError() {
	m.rateLimitEvents.WithLabelValues("redis_error").Inc()
}

// IncrementRateLimitFallback increments fallback rate limiter usage count
func (m *Metrics) IncrementRateLimitFallback() {
	m.rateLimitEvents.WithLabelValues("fallback").Inc()
}

// GetStats returns a summary for the health endpoint
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.requestCount)
	errors := atomic.LoadInt64(&m.errorCount)
	cacheHits := atomic.LoadInt64(&m.cacheHits)
	cacheMisses := atomic.LoadInt64(&m.cacheMisses)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,
		"start_time":             m.StartTime.Format(time.RFC3339),
	}
}

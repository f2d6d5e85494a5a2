package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the site collectors. Each instance owns its registry so
// several routers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	ActiveRequests      prometheus.Gauge
	PageCacheEvents     *prometheus.CounterVec
	DomainEvents        *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HttpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),

		HttpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),

		ActiveRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Number of requests being served",
			},
		),

		PageCacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_cache_events_total",
				Help: "Page cache lookups by result",
			},
			[]string{"result"},
		),

		DomainEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_events_published_total",
				Help: "Domain events handed to the event bus by type and outcome",
			},
			[]string{"type", "outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HttpRequestsTotal,
		m.HttpRequestDuration,
		m.ActiveRequests,
		m.PageCacheEvents,
		m.DomainEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware records request counts and latency per route template, so
// /leo/1/ and /anna/2/ share one series.
func (m *Metrics) Middleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		timer := prometheus.NewTimer(m.HttpRequestDuration.WithLabelValues(path))
		m.ActiveRequests.Inc()

		c.Next()

		timer.ObserveDuration()
		m.ActiveRequests.Dec()
		m.HttpRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// CacheEvent counts one page cache lookup outcome: hit, miss, shared or error.
func (m *Metrics) CacheEvent(result string) {
	m.PageCacheEvents.WithLabelValues(result).Inc()
}

// EventPublished counts one domain event publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.DomainEvents.WithLabelValues(eventType, outcome).Inc()
}

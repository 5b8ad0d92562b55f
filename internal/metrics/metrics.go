// Package metrics defines the Prometheus collectors of the service and the
// echo plumbing to record and expose them.
//
// Collectors:
//   - ctxword_http_requests_total: requests by route, method and status
//   - ctxword_http_request_duration_seconds: request latency by route and method
//   - ctxword_pipeline_requests_total: pipeline lookups by outcome
//   - ctxword_pipeline_duration_seconds: pipeline lookup latency
//   - ctxword_pipeline_cache_total: cache lookups by result (hit/miss/error)
package metrics

import (
	"strconv"
	"time"

	"github.com/deppfellow/ctxword/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ctxword"

// Pipeline outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds every collector, registered on its own registry so tests can
// build as many instances as they like.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	PipelineCalls   *prometheus.CounterVec
	PipelineLatency prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
}

// New creates and registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"path", "method"},
		),
		PipelineCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "pipeline_requests_total", Help: "Synonym pipeline lookups by outcome."},
			[]string{"outcome"},
		),
		PipelineLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{Namespace: namespace, Name: "pipeline_duration_seconds", Help: "Synonym pipeline lookup latency in seconds.", Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "pipeline_cache_total", Help: "Pipeline cache lookups by result."},
			[]string{"result"},
		),
	}

	m.Registry.MustRegister(
		m.HTTPRequests,
		m.HTTPLatency,
		m.PipelineCalls,
		m.PipelineLatency,
		m.CacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObservePipeline records one pipeline lookup.
func (m *Metrics) ObservePipeline(outcome string, d time.Duration) {
	m.PipelineCalls.WithLabelValues(outcome).Inc()
	m.PipelineLatency.Observe(d.Seconds())
}

// ObserveCache records one cache lookup.
func (m *Metrics) ObserveCache(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Middleware records request count and latency for every route.
//
// When the handler returns an error the response has not been written yet,
// so the status is taken from the error the same way the request logger does.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method

			m.HTTPLatency.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
			m.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(errs.StatusOf(err, c.Response().Status))).Inc()

			return err
		}
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry}))
}

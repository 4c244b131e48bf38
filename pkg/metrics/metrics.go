// Package metrics defines the Prometheus metric collectors used by the
// scoring service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for DocumentsScoredTotal.
const (
	OutcomeFinite     = "finite"
	OutcomeDegenerate = "degenerate"
	OutcomeError      = "error"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	ScoreRequestsTotal   *prometheus.CounterVec
	DocumentsScoredTotal *prometheus.CounterVec
	ScoreLatency         prometheus.Histogram
	StatsCacheHitsTotal  prometheus.Counter
	StatsCacheMissTotal  prometheus.Counter
	DocsIndexedTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the collectors and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ScoreRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "score_requests_total",
				Help: "Scoring requests by status (ok, invalid, error).",
			},
			[]string{"status"},
		),
		DocumentsScoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_scored_total",
				Help: "Documents scored by outcome (finite, degenerate, error).",
			},
			[]string{"outcome"},
		),
		ScoreLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "score_latency_seconds",
				Help:    "Time to score all candidates of one request.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		StatsCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stats_cache_hits_total",
				Help: "Term statistics served from the Redis cache.",
			},
		),
		StatsCacheMissTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stats_cache_misses_total",
				Help: "Term statistics lookups that missed the Redis cache.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Documents indexed by source (http, kafka) and status.",
			},
			[]string{"source", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ScoreRequestsTotal,
		m.DocumentsScoredTotal,
		m.ScoreLatency,
		m.StatsCacheHitsTotal,
		m.StatsCacheMissTotal,
		m.DocsIndexedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

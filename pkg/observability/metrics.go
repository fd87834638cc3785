package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation status label values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Cache result label values
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	GenerationsTotal      *prometheus.CounterVec
	GenerationDuration    prometheus.Histogram
	ArtifactsWrittenTotal *prometheus.CounterVec
	WriteErrorsTotal      prometheus.Counter
	CacheRequestsTotal    *prometheus.CounterVec
	LastSuccessTimestamp  prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flare_generations_total",
				Help: "Total number of generation runs",
			},
			[]string{"status"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flare_generation_duration_seconds",
				Help:    "Generation run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		ArtifactsWrittenTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flare_artifacts_written_total",
				Help: "Total number of generated files written",
			},
			[]string{"platform", "kind"},
		),
		WriteErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flare_write_errors_total",
				Help: "Total number of generated files that failed to write",
			},
		),
		CacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flare_cache_requests_total",
				Help: "Total number of render cache lookups",
			},
			[]string{"result"},
		),
		LastSuccessTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "flare_last_success_timestamp_seconds",
				Help: "Unix time of the last successful generation run",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.GenerationsTotal,
		m.GenerationDuration,
		m.ArtifactsWrittenTotal,
		m.WriteErrorsTotal,
		m.CacheRequestsTotal,
		m.LastSuccessTimestamp,
	)

	return m
}

// RecordGeneration records the outcome and duration of a generation run
func (m *Metrics) RecordGeneration(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(status).Inc()
	m.GenerationDuration.Observe(duration.Seconds())
	if status == StatusSuccess {
		m.LastSuccessTimestamp.SetToCurrentTime()
	}
}

// RecordArtifact records one generated file written to disk
func (m *Metrics) RecordArtifact(platform, kind string) {
	if m == nil {
		return
	}
	if platform == "" {
		platform = "shared"
	}
	m.ArtifactsWrittenTotal.WithLabelValues(platform, kind).Inc()
}

// RecordWriteError records one failed file write
func (m *Metrics) RecordWriteError() {
	if m == nil {
		return
	}
	m.WriteErrorsTotal.Inc()
}

// RecordCacheRequest records a render cache lookup
func (m *Metrics) RecordCacheRequest(result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// Registry returns the registry the metrics were registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the gathered metrics in the text exposition format,
// for node-exporter's textfile collector. The write is atomic.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	return prometheus.WriteToTextfile(path, g)
}

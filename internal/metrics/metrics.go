package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for crewdeck.
// Helper methods are nil-safe so packages can run without metrics in tests.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Query cache Metrics
	CacheHitsTotal          *prometheus.CounterVec
	CacheMissesTotal        *prometheus.CounterVec
	CacheFetchesTotal       *prometheus.CounterVec
	CacheInvalidationsTotal *prometheus.CounterVec

	// Realtime Metrics
	RealtimeEventsTotal *prometheus.CounterVec
	RealtimeErrorsTotal *prometheus.CounterVec
	RealtimeChannels    prometheus.Gauge

	// Job Metrics
	PollRunsTotal  *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
	BusEventsTotal *prometheus.CounterVec
	BusQueueDepth  prometheus.Gauge
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	f := promauto.With(reg)
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crewdeck_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crewdeck_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Query cache Metrics
		CacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_cache_hits_total",
				Help: "Fresh query cache reads by entity",
			},
			[]string{"entity"},
		),
		CacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_cache_misses_total",
				Help: "Query cache reads that needed a fetch, by entity",
			},
			[]string{"entity"},
		),
		CacheFetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_cache_fetches_total",
				Help: "Query fetches by entity and result (ok, error, superseded)",
			},
			[]string{"entity", "result"},
		),
		CacheInvalidationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_cache_invalidations_total",
				Help: "Invalidated cache entries by entity",
			},
			[]string{"entity"},
		),

		// Realtime Metrics
		RealtimeEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_realtime_events_total",
				Help: "Change feed events received by table and type",
			},
			[]string{"table", "type"},
		),
		RealtimeErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_realtime_errors_total",
				Help: "Change feed failures by table and stage (subscribe, decode, publish)",
			},
			[]string{"table", "stage"},
		),
		RealtimeChannels: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "crewdeck_realtime_channels",
				Help: "Open logical realtime channels",
			},
		),

		// Job Metrics
		PollRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_poll_runs_total",
				Help: "Scheduled poll invalidation runs by job",
			},
			[]string{"job"},
		),
		JobDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crewdeck_job_duration_seconds",
				Help:    "Background job execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"job_name"},
		),
		BusEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crewdeck_invalidation_events_total",
				Help: "Invalidation bus events consumed by source",
			},
			[]string{"source"},
		),
		BusQueueDepth: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "crewdeck_invalidation_queue_depth",
				Help: "Invalidation events waiting for the worker",
			},
		),
	}
}

func (m *MetricsRegistry) CacheHit(entity string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(entity).Inc()
}

func (m *MetricsRegistry) CacheMiss(entity string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(entity).Inc()
}

func (m *MetricsRegistry) CacheFetch(entity, result string) {
	if m == nil {
		return
	}
	m.CacheFetchesTotal.WithLabelValues(entity, result).Inc()
}

func (m *MetricsRegistry) CacheInvalidated(entity string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.CacheInvalidationsTotal.WithLabelValues(entity).Add(float64(n))
}

func (m *MetricsRegistry) RealtimeEvent(table, eventType string) {
	if m == nil {
		return
	}
	m.RealtimeEventsTotal.WithLabelValues(table, eventType).Inc()
}

func (m *MetricsRegistry) RealtimeError(table, stage string) {
	if m == nil {
		return
	}
	m.RealtimeErrorsTotal.WithLabelValues(table, stage).Inc()
}

func (m *MetricsRegistry) SetRealtimeChannels(n int) {
	if m == nil {
		return
	}
	m.RealtimeChannels.Set(float64(n))
}

func (m *MetricsRegistry) PollRun(job string, seconds float64) {
	if m == nil {
		return
	}
	m.PollRunsTotal.WithLabelValues(job).Inc()
	m.JobDuration.WithLabelValues(job).Observe(seconds)
}

func (m *MetricsRegistry) BusEvent(source string, depth int) {
	if m == nil {
		return
	}
	m.BusEventsTotal.WithLabelValues(source).Inc()
	m.BusQueueDepth.Set(float64(depth))
}

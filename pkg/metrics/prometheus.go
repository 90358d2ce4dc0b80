// Package metrics provides Prometheus metrics for the Swiss tournament service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultLatencyBucketsMs covers sub-millisecond in-memory calls up to slow SQL.
var defaultLatencyBucketsMs = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Tournament activity
	competitorsRegistered  prometheus.Counter
	matchesReported        prometheus.Counter
	duplicateReports       prometheus.Counter
	preconditionViolations *prometheus.CounterVec
	standingsComputed      prometheus.Counter
	pairingsComputed       prometheus.Counter
	resets                 prometheus.Counter
	competitors            prometheus.Gauge

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics singleton

// customRegistry backs /healthz. It holds only the collectors registered
// explicitly: the service metrics here and the runtime collectors added by cmd.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swiss",
		subsystem:        "tournament",
		histogramBuckets: defaultLatencyBucketsMs,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}

	m.competitorsRegistered = counter("competitors_registered_total", "Total number of competitors registered")
	m.matchesReported = counter("matches_reported_total", "Total number of match results recorded")
	m.duplicateReports = counter("duplicate_reports_total", "Match reports skipped because their idempotency key was already used")
	m.standingsComputed = counter("standings_computed_total", "Total number of standings computations")
	m.pairingsComputed = counter("pairings_computed_total", "Total number of successful pairing computations")
	m.resets = counter("resets_total", "Total number of full tournament resets")

	m.preconditionViolations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "precondition_violations_total",
		Help:      "Requests rejected because a precondition did not hold",
	}, []string{"operation"})

	m.competitors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "competitors",
		Help:      "Number of registered competitors at the last count",
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_operation_duration_milliseconds",
		Help:      "Store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Store operations that failed",
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "HTTP errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "HTTP errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordCompetitorRegistered counts one registration.
func (m *Manager) RecordCompetitorRegistered() { m.competitorsRegistered.Inc() }

// RecordMatchReported counts one recorded match.
func (m *Manager) RecordMatchReported() { m.matchesReported.Inc() }

// RecordDuplicateReport counts one report skipped by idempotency key.
func (m *Manager) RecordDuplicateReport() { m.duplicateReports.Inc() }

// RecordPreconditionViolation counts one rejected call to operation.
func (m *Manager) RecordPreconditionViolation(operation string) {
	m.preconditionViolations.WithLabelValues(operation).Inc()
}

// RecordStandingsComputed counts one standings computation.
func (m *Manager) RecordStandingsComputed() { m.standingsComputed.Inc() }

// RecordPairingsComputed counts one pairing computation.
func (m *Manager) RecordPairingsComputed() { m.pairingsComputed.Inc() }

// RecordReset counts one full reset.
func (m *Manager) RecordReset() { m.resets.Inc() }

// UpdateCompetitors sets the competitor gauge.
func (m *Manager) UpdateCompetitors(n int) { m.competitors.Set(float64(n)) }

// RecordStoreOperation observes a store call and counts it as failed when err is set.
func (m *Manager) RecordStoreOperation(operation string, latencyMs float64, err error) {
	m.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	if err != nil {
		m.storeErrors.WithLabelValues(operation).Inc()
	}
}

// RecordHTTPRequest counts one HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByType counts one HTTP error by type.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts one HTTP error by endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Global returns the process-wide manager registered on GetRegistry.
func Global() *Manager { return globalManager }

// GetRegistry returns the custom registry backing Global.
func GetRegistry() *prometheus.Registry { return customRegistry }

// Package-level helpers delegate to the global manager.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

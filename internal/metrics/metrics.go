// Package metrics provides Prometheus metrics for the rookery daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "rookery"
	subsystem = "catalog"
)

// Manager owns all Prometheus metrics for the daemon.
type Manager struct {
	registry prometheus.Registerer

	sourceFetches    *prometheus.CounterVec
	sourceFetchTime  *prometheus.HistogramVec
	reconcilePasses  prometheus.Counter
	unifiedGames     prometheus.Gauge
	importsAccepted  prometheus.Counter
	importsRejected  prometheus.Counter
	jobTransitions   *prometheus.CounterVec
	jobsQueued       prometheus.Gauge
	jobsRunning      prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpRequestTime  *prometheus.HistogramVec
	dispatcherClaims prometheus.Counter
	dispatcherIdle   prometheus.Counter
	dispatcherErrors prometheus.Counter
}

// Custom registry keeps the default Go collectors out of the scrape.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry

var globalManager = NewManager(customRegistry) //nolint:gochecknoglobals // singleton metrics manager

// NewManager creates a metrics manager registered on the given registerer.
func NewManager(registry prometheus.Registerer) *Manager {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	m := &Manager{registry: registry}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sourceFetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "source_fetches_total",
			Help:      "Total archive fetch attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	m.sourceFetchTime = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "source_fetch_duration_milliseconds",
			Help:      "Archive fetch duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	m.reconcilePasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reconcile_passes_total",
		Help:      "Total reconciliation passes over the catalog",
	})

	m.unifiedGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "unified_games_last",
		Help:      "Unified game count produced by the most recent listing",
	})

	m.importsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "imports_accepted_total",
		Help:      "Total batch import entries accepted",
	})

	m.importsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "imports_rejected_total",
		Help:      "Total batch import entries rejected",
	})

	m.jobTransitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "job_transitions_total",
			Help:      "Total analysis job transitions by resulting status",
		},
		[]string{"status"},
	)

	m.jobsQueued = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "jobs_queued",
		Help:      "Current number of queued analysis jobs",
	})

	m.jobsRunning = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "jobs_running",
		Help:      "Current number of running analysis jobs",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP API requests by endpoint, method, and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestTime = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_milliseconds",
			Help:      "HTTP API request duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.dispatcherClaims = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "dispatcher_claims_total",
		Help:      "Total jobs claimed by the dispatcher",
	})

	m.dispatcherIdle = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "dispatcher_idle_polls_total",
		Help:      "Total dispatcher polls that found the queue empty",
	})

	m.dispatcherErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "dispatcher_errors_total",
		Help:      "Total dispatcher poll or run failures",
	})
}

// RecordSourceFetch records the outcome of one archive fetch.
func RecordSourceFetch(source, outcome string) {
	globalManager.sourceFetches.WithLabelValues(source, outcome).Inc()
}

// RecordSourceFetchDuration records archive fetch latency in milliseconds.
func RecordSourceFetchDuration(source string, latencyMs float64) {
	globalManager.sourceFetchTime.WithLabelValues(source).Observe(latencyMs)
}

// RecordReconcilePass increments the reconciliation pass counter.
func RecordReconcilePass(unified int) {
	globalManager.reconcilePasses.Inc()
	globalManager.unifiedGames.Set(float64(unified))
}

// RecordImport adds batch import counts.
func RecordImport(accepted, rejected int) {
	globalManager.importsAccepted.Add(float64(accepted))
	globalManager.importsRejected.Add(float64(rejected))
}

// RecordJobTransition counts one job transition into the given status.
func RecordJobTransition(status string) {
	globalManager.jobTransitions.WithLabelValues(status).Inc()
}

// UpdateJobGauges sets the queued and running job gauges.
func UpdateJobGauges(queued, running int) {
	globalManager.jobsQueued.Set(float64(queued))
	globalManager.jobsRunning.Set(float64(running))
}

// RecordHTTPRequest records an HTTP API request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP API request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestTime.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordDispatcherClaim increments the dispatcher claim counter.
func RecordDispatcherClaim() {
	globalManager.dispatcherClaims.Inc()
}

// RecordDispatcherIdle increments the idle poll counter.
func RecordDispatcherIdle() {
	globalManager.dispatcherIdle.Inc()
}

// RecordDispatcherError increments the dispatcher error counter.
func RecordDispatcherError() {
	globalManager.dispatcherErrors.Inc()
}

// GetRegistry returns the custom Prometheus registry backing the package
// level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

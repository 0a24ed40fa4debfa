// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	SimulationRunsTotal  *prometheus.CounterVec
	SimulationDuration   *prometheus.HistogramVec
	TrajectoriesTotal    *prometheus.CounterVec
	SensitivityRunsTotal prometheus.Counter
	SensitivityDuration  prometheus.Histogram
	ActiveRuns           prometheus.Gauge

	// API metrics
	HTTPRequestsTotal *prometheus.CounterVec
	WSSessionsTotal   *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "montecarlo_lab"
	}

	return &Metrics{
		// Simulation metrics
		SimulationRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by strategy and status",
		}, []string{"strategy", "status"}),
		SimulationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"strategy"}),
		TrajectoriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trajectories_total",
			Help:      "Total number of trajectories simulated by distribution",
		}, []string{"distribution"}),
		SensitivityRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sensitivity",
			Name:      "reruns_total",
			Help:      "Total number of reduced ensembles run for sensitivity analysis",
		}),
		SensitivityDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sensitivity",
			Name:      "duration_seconds",
			Help:      "Sensitivity analysis duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ActiveRuns: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "active_runs",
			Help:      "Number of simulation runs in progress",
		}),

		// API metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		}, []string{"route", "code"}),
		WSSessionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_sessions_total",
			Help:      "Total number of WebSocket simulation sessions by outcome",
		}, []string{"outcome"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful simulation run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSimulationRun records a finished simulation run.
func RecordSimulationRun(strategy, status string, durationSeconds float64) {
	DefaultMetrics.SimulationRunsTotal.WithLabelValues(strategy, status).Inc()
	DefaultMetrics.SimulationDuration.WithLabelValues(strategy).Observe(durationSeconds)
}

// RecordTrajectories adds simulated trajectories for a distribution.
func RecordTrajectories(distribution string, n int) {
	DefaultMetrics.TrajectoriesTotal.WithLabelValues(distribution).Add(float64(n))
}

// RecordSensitivity records a finished sensitivity analysis.
func RecordSensitivity(reruns int, durationSeconds float64) {
	DefaultMetrics.SensitivityRunsTotal.Add(float64(reruns))
	DefaultMetrics.SensitivityDuration.Observe(durationSeconds)
}

// RunStarted increments the active runs gauge. Call the returned func when done.
func RunStarted() func() {
	DefaultMetrics.ActiveRuns.Inc()
	return DefaultMetrics.ActiveRuns.Dec
}

// RecordLastSuccess stamps the last successful run time.
func RecordLastSuccess(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulRun.Set(float64(unixSeconds))
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(route, code string) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
}

// RecordWSSession records the outcome of a WebSocket session.
func RecordWSSession(outcome string) {
	DefaultMetrics.WSSessionsTotal.WithLabelValues(outcome).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

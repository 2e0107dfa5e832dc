package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	signalsDetected      *prometheus.CounterVec
	pipelineRuns         *prometheus.CounterVec
	pipelineDuration     prometheus.Histogram
	backtestsTotal       *prometheus.CounterVec
	backtestDuration     prometheus.Histogram
	significanceDuration prometheus.Histogram
	reportsArchived      *prometheus.CounterVec
	notificationsSent    *prometheus.CounterVec
	lastPValue           *prometheus.GaugeVec
	lastFinalCash        *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.signalsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_signals_detected_total",
			Help: "Total number of weather buy signals detected",
		},
		[]string{"commodity", "kind"},
	)
	r.pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_pipeline_runs_total",
			Help: "Total number of per-commodity pipeline runs",
		},
		[]string{"commodity", "status"},
	)
	r.pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvest_pipeline_duration_seconds",
			Help:    "Full pipeline run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_backtests_total",
			Help: "Total number of backtests",
		},
		[]string{"commodity"},
	)
	r.backtestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvest_backtest_duration_seconds",
			Help:    "Backtest duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.significanceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvest_significance_duration_seconds",
			Help:    "Permutation significance test duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)
	r.reportsArchived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_reports_archived_total",
			Help: "Total number of reports written to cold storage",
		},
		[]string{"backend", "status"},
	)
	r.notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_notifications_sent_total",
			Help: "Total number of report notifications sent",
		},
		[]string{"notifier", "status"},
	)
	r.lastPValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harvest_last_p_value",
			Help: "P-value from the most recent significance test",
		},
		[]string{"commodity"},
	)
	r.lastFinalCash = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harvest_last_final_cash",
			Help: "Final cash from the most recent backtest",
		},
		[]string{"commodity"},
	)

	reg.MustRegister(r.signalsDetected)
	reg.MustRegister(r.pipelineRuns)
	reg.MustRegister(r.pipelineDuration)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.significanceDuration)
	reg.MustRegister(r.reportsArchived)
	reg.MustRegister(r.notificationsSent)
	reg.MustRegister(r.lastPValue)
	reg.MustRegister(r.lastFinalCash)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSignals records detected buy signals.
func (r *Registry) RecordSignals(commodity, kind string, n int) {
	r.signalsDetected.WithLabelValues(commodity, kind).Add(float64(n))
}

// RecordPipelineRun records a completed pipeline run.
func (r *Registry) RecordPipelineRun(commodity, status string, duration float64) {
	r.pipelineRuns.WithLabelValues(commodity, status).Inc()
	r.pipelineDuration.Observe(duration)
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(commodity string, duration float64) {
	r.backtestsTotal.WithLabelValues(commodity).Inc()
	r.backtestDuration.Observe(duration)
}

// RecordSignificance records a permutation test completion.
func (r *Registry) RecordSignificance(duration float64) {
	r.significanceDuration.Observe(duration)
}

// RecordArchive records a cold storage write.
func (r *Registry) RecordArchive(backend, status string) {
	r.reportsArchived.WithLabelValues(backend, status).Inc()
}

// RecordNotification records a notification attempt.
func (r *Registry) RecordNotification(notifier, status string) {
	r.notificationsSent.WithLabelValues(notifier, status).Inc()
}

// SetLastResults publishes headline numbers from a finished run.
func (r *Registry) SetLastResults(commodity string, pValue, finalCash float64) {
	r.lastPValue.WithLabelValues(commodity).Set(pValue)
	r.lastFinalCash.WithLabelValues(commodity).Set(finalCash)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

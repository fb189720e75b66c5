package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the self-instrumentation of the control loop. Each instance
// carries its own registry so tests can build isolated sets.
type Metrics struct {
	registry *prometheus.Registry

	DetectionCycles   prometheus.Counter
	DetectionErrors   prometheus.Counter
	AnomaliesDetected *prometheus.CounterVec
	ActionsExecuted   *prometheus.CounterVec
	MetricValue       *prometheus.GaugeVec
	ActiveAnomalies   prometheus.Gauge
	CycleDuration     prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		DetectionCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_detection_cycles_total",
			Help: "Total number of completed detection cycles.",
		}),
		DetectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_detection_errors_total",
			Help: "Total number of detection cycle errors.",
		}),
		AnomaliesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_anomalies_detected_total",
			Help: "Total anomalies detected, by service, metric and severity.",
		}, []string{"service", "metric", "severity"}),
		ActionsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_actions_executed_total",
			Help: "Total remediation actions executed, by action type and status.",
		}, []string{"action", "status"}),
		MetricValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_metric_value",
			Help: "Last sampled value per monitored service metric.",
		}, []string{"service", "metric"}),
		ActiveAnomalies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_active_anomalies",
			Help: "Number of anomalies active in the most recent detection cycle.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_detection_cycle_duration_seconds",
			Help:    "Duration of detection cycles.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.DetectionCycles,
		m.DetectionErrors,
		m.AnomaliesDetected,
		m.ActionsExecuted,
		m.MetricValue,
		m.ActiveAnomalies,
		m.CycleDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

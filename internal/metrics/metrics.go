// Package metrics exposes Prometheus instruments for dataset loading and analyses.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promolift"

// ResultOK labels a successful load
const ResultOK = "ok"

// Metrics holds the collectors registered for one process
type Metrics struct {
	datasetLoads   *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	datasetRows    prometheus.Gauge
	analyses       *prometheus.CounterVec
	undefined      *prometheus.CounterVec
	reportDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers every collector with reg. Pass a fresh prometheus.NewRegistry()
// in tests so collectors do not clash.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		datasetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by result (ok or the error code).",
		}, []string{"result"}),
		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent reading and validating the dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		datasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the currently loaded table.",
		}),
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis entry point calls.",
		}, []string{"analysis"}),
		undefined: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undefined_results_total",
			Help:      "Results reported as undefined, by analysis and reason code.",
		}, []string{"analysis", "code"}),
		reportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time spent computing a full report.",
			Buckets:   prometheus.DefBuckets,
		}),
		gatherer: reg,
	}
}

// ObserveLoad records one dataset load
func (m *Metrics) ObserveLoad(d time.Duration, rows int, result string) {
	if m == nil {
		return
	}
	m.datasetLoads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(d.Seconds())
	if result == ResultOK {
		m.datasetRows.Set(float64(rows))
	}
}

// CountAnalysis records a call to an analysis entry point
func (m *Metrics) CountAnalysis(analysis string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(analysis).Inc()
}

// CountUndefined records an undefined result
func (m *Metrics) CountUndefined(analysis, code string) {
	if m == nil {
		return
	}
	m.undefined.WithLabelValues(analysis, code).Inc()
}

// ObserveReport records how long a report took
func (m *Metrics) ObserveReport(d time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

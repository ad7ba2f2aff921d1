// Package metrics exposes Prometheus instrumentation for parameter fetches.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	defaultOnce    sync.Once
	defaultMetrics *FetchMetrics
)

// FetchMetrics records GetParametersByPath activity. A nil *FetchMetrics is
// valid and records nothing.
type FetchMetrics struct {
	Calls      *prometheus.CounterVec
	Pages      *prometheus.CounterVec
	Parameters *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// Default returns the process-wide metrics registered on the default
// Prometheus registerer. It is initialized once.
func Default() *FetchMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New registers a fresh metric set on reg.
func New(reg prometheus.Registerer) *FetchMetrics {
	factory := promauto.With(reg)

	return &FetchMetrics{
		Calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssmconfig_remote_calls_total",
				Help: "Total number of GetParametersByPath calls issued",
			},
			[]string{"path"},
		),
		Pages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssmconfig_pages_total",
				Help: "Total number of result pages merged",
			},
			[]string{"path"},
		),
		Parameters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssmconfig_parameters_total",
				Help: "Total number of parameters received",
			},
			[]string{"path"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssmconfig_fetch_failures_total",
				Help: "Total number of fetches aborted by a remote call failure",
			},
			[]string{"path"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ssmconfig_fetch_duration_seconds",
				Help:    "Duration of complete fetch cycles in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"path", "status"},
		),
	}
}

// RecordCall records one remote call.
func (m *FetchMetrics) RecordCall(path string) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(path).Inc()
}

// RecordPage records one merged page and the number of parameters it held.
func (m *FetchMetrics) RecordPage(path string, parameters int) {
	if m == nil {
		return
	}
	m.Pages.WithLabelValues(path).Inc()
	m.Parameters.WithLabelValues(path).Add(float64(parameters))
}

// RecordFetch records the outcome of a full fetch cycle.
func (m *FetchMetrics) RecordFetch(path string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
		m.Failures.WithLabelValues(path).Inc()
	}
	m.Duration.WithLabelValues(path, status).Observe(elapsed.Seconds())
}

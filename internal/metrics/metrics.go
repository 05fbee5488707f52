// Package metrics exports finished benchmark results in the Prometheus text
// format, for node_exporter's textfile collector or a pushgateway job.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sample is one averaged run, flattened out of the result tree.
type Sample struct {
	Benchmark  string
	Path       []string
	Time       time.Duration
	Metrics    map[string]uint64
	Iterations int
}

// Metrics holds the gauges of a single report. Each instance owns its
// registry so several reports can be exported from one process.
type Metrics struct {
	Registry *prometheus.Registry

	RunTime    *prometheus.GaugeVec
	RunMetric  *prometheus.GaugeVec
	Iterations *prometheus.GaugeVec
	Runs       prometheus.Gauge
}

// NewMetrics creates and registers the report gauges.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.RunTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "benchy_run_time_seconds",
			Help: "Mean wall time of the measured section of a benchmark run",
		},
		[]string{"benchmark", "path"},
	)

	m.RunMetric = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "benchy_run_metric",
			Help: "Mean value of a metric logged by a benchmark run",
		},
		[]string{"benchmark", "path", "metric"},
	)

	m.Iterations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "benchy_run_iterations",
			Help: "Number of isolated iterations averaged into a benchmark run",
		},
		[]string{"benchmark", "path"},
	)

	m.Runs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "benchy_runs",
			Help: "Number of runs in the exported report",
		},
	)

	m.Registry.MustRegister(
		m.RunTime,
		m.RunMetric,
		m.Iterations,
		m.Runs,
	)

	return m
}

// Observe records one run.
func (m *Metrics) Observe(s Sample) {
	path := strings.Join(s.Path, "/")

	m.RunTime.WithLabelValues(s.Benchmark, path).Set(s.Time.Seconds())
	for name, v := range s.Metrics {
		m.RunMetric.WithLabelValues(s.Benchmark, path, name).Set(float64(v))
	}
	if s.Iterations > 0 {
		m.Iterations.WithLabelValues(s.Benchmark, path).Set(float64(s.Iterations))
	}
	m.Runs.Inc()
}

// WriteTextfile atomically writes every gauge to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Export is Observe for every sample followed by WriteTextfile.
func Export(path string, samples []Sample) error {
	m := NewMetrics()
	for _, s := range samples {
		m.Observe(s)
	}
	return m.WriteTextfile(path)
}

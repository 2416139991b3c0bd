package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the calculator's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	commands *prometheus.CounterVec
	errors   prometheus.Counter
	duration *prometheus.HistogramVec
	value    prometheus.Gauge
	cursor   prometheus.Gauge
	length   prometheus.Gauge
}

// NewMetrics creates and registers the calculator collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "undocalc_commands_total",
			Help: "Calculator commands executed, by kind (compute, undo, redo).",
		}, []string{"kind"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "undocalc_errors_total",
			Help: "Calculator commands that failed.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "undocalc_command_duration_seconds",
			Help:    "Time spent executing calculator commands.",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"kind"}),
		value: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "undocalc_accumulator_value",
			Help: "Current accumulator value.",
		}),
		cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "undocalc_history_cursor",
			Help: "Current position of the history cursor.",
		}),
		length: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "undocalc_history_length",
			Help: "Number of entries in the command log.",
		}),
	}

	m.registry.MustRegister(m.commands, m.errors, m.duration, m.value, m.cursor, m.length)
	return m
}

// Registry returns the registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCommand records one command of kind and how long it took.
func (m *Metrics) ObserveCommand(kind string, d time.Duration, err error) {
	m.commands.WithLabelValues(kind).Inc()
	m.duration.WithLabelValues(kind).Observe(d.Seconds())
	if err != nil {
		m.errors.Inc()
	}
}

// SetValue sets the accumulator gauge.
func (m *Metrics) SetValue(v int64) {
	m.value.Set(float64(v))
}

// SetHistory sets the cursor and length gauges.
func (m *Metrics) SetHistory(cursor, length int) {
	m.cursor.Set(float64(cursor))
	m.length.Set(float64(length))
}

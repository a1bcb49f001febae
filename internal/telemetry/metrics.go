// Package telemetry provides Prometheus metrics for the tracker.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	SweepsTotal         prometheus.Counter
	SweepDuration       prometheus.Histogram
	TasksRegenerated    prometheus.Counter
	AlertsActive        *prometheus.GaugeVec
	DataErrorsTotal     prometheus.Counter
	PersistenceFailures *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		SweepsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "worktracker_sweeps_total",
				Help: "Total number of background sweeps run.",
			},
		),
		SweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "worktracker_sweep_duration_seconds",
				Help:    "Sweep duration.",
				Buckets: prometheus.DefBuckets,
			},
		),
		TasksRegenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "worktracker_tasks_regenerated_total",
				Help: "Recurring tasks rolled into a new cycle.",
			},
		),
		AlertsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "worktracker_alerts_active",
				Help: "Active (non-dismissed) alerts by type.",
			},
			[]string{"type"},
		),
		DataErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "worktracker_data_errors_total",
				Help: "Malformed dates skipped during alert scans.",
			},
		),
		PersistenceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worktracker_persistence_failures_total",
				Help: "Failed JSON store writes by store.",
			},
			[]string{"store"},
		),
		registry: reg,
	}

	reg.MustRegister(m.SweepsTotal)
	reg.MustRegister(m.SweepDuration)
	reg.MustRegister(m.TasksRegenerated)
	reg.MustRegister(m.AlertsActive)
	reg.MustRegister(m.DataErrorsTotal)
	reg.MustRegister(m.PersistenceFailures)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPersistenceFailure increments the write failure counter for a store.
func (m *Metrics) RecordPersistenceFailure(store string) {
	m.PersistenceFailures.WithLabelValues(store).Inc()
}

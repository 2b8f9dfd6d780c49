// Package metrics exposes Prometheus collectors for the Monte Carlo engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the container of engine-observability collectors.
type Metrics struct {
	IterationsTotal   *prometheus.CounterVec
	IterationDuration *prometheus.HistogramVec
	WorkersBusy       prometheus.Gauge
	AggregateFolds    prometheus.Counter
	EnvelopesTotal    prometheus.Gauge
}

var defaultMetrics *Metrics

// Init creates and registers the engine's collectors under namespace/subsystem.
func Init(namespace, subsystem string) *Metrics {
	m := &Metrics{
		IterationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iterations_total",
				Help:      "Total number of Monte Carlo iterations processed, by outcome.",
			},
			[]string{"outcome"},
		),
		IterationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iteration_duration_seconds",
				Help:      "Duration of a single iteration (sample + view + analyze).",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"analyzer"},
		),
		WorkersBusy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "workers_busy",
				Help:      "Current number of workers actively processing an iteration.",
			},
		),
		AggregateFolds: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "aggregate_folds_total",
				Help:      "Total number of records folded into envelopes.",
			},
		),
		EnvelopesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "envelopes_total",
				Help:      "Number of distinct (src,dst) envelope keys observed in the current run.",
			},
		),
	}
	defaultMetrics = m
	return m
}

// Default returns the package-level metrics, initializing with namespace
// "netgraph" and subsystem "engine" if Init was never called.
func Default() *Metrics {
	if defaultMetrics == nil {
		return Init("netgraph", "engine")
	}
	return defaultMetrics
}

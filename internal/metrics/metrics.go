// Package metrics holds the Prometheus collectors for simulation and pricing
// runs. Batch binaries write them to a node-exporter textfile on exit.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	PathsSimulated  *prometheus.CounterVec
	StepsSimulated  *prometheus.CounterVec
	PricingRequests *prometheus.CounterVec
	PricingErrors   *prometheus.CounterVec

	DriftCacheHits    prometheus.Gauge
	DriftCacheMisses  prometheus.Gauge
	DriftCacheEntries prometheus.Gauge

	LastSuccessfulRun prometheus.Gauge
}

// New registers every collector on a private registry, so several instances
// can coexist in one process.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ratesim"
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Simulation runs by model and outcome",
		}, []string{"model", "outcome"}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a simulation run including discount factors",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"model"}),
		PathsSimulated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "paths_total",
			Help:      "Rate paths simulated",
		}, []string{"model"}),
		StepsSimulated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "steps_total",
			Help:      "Euler steps advanced across all paths",
		}, []string{"model"}),
		PricingRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "instruments_total",
			Help:      "Instruments priced by kind",
		}, []string{"instrument"}),
		PricingErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "errors_total",
			Help:      "Pricing requests rejected, by error kind",
		}, []string{"kind"}),

		DriftCacheHits: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "drift_cache",
			Name:      "hits",
			Help:      "Drift curve cache hits since start",
		}),
		DriftCacheMisses: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "drift_cache",
			Name:      "misses",
			Help:      "Drift curve cache misses since start",
		}),
		DriftCacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "drift_cache",
			Name:      "entries",
			Help:      "Drift curves currently cached",
		}),

		LastSuccessfulRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix time of the last successful simulation run",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records one simulation run. err == nil counts as success.
func (m *Metrics) ObserveRun(model string, paths, steps int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RunsTotal.WithLabelValues(model, outcome).Inc()
	m.RunDuration.WithLabelValues(model).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	m.PathsSimulated.WithLabelValues(model).Add(float64(paths))
	m.StepsSimulated.WithLabelValues(model).Add(float64(paths) * float64(steps))
	m.LastSuccessfulRun.SetToCurrentTime()
}

// ObserveCache publishes the drift cache counters and size.
func (m *Metrics) ObserveCache(hits, misses, entries int) {
	if m == nil {
		return
	}
	m.DriftCacheHits.Set(float64(hits))
	m.DriftCacheMisses.Set(float64(misses))
	m.DriftCacheEntries.Set(float64(entries))
}

// ObservePricing counts priced instruments by kind.
func (m *Metrics) ObservePricing(instrument string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.PricingRequests.WithLabelValues(instrument).Add(float64(n))
}

// ObservePricingError counts a rejected pricing request.
func (m *Metrics) ObservePricingError(kind string) {
	if m == nil {
		return
	}
	m.PricingErrors.WithLabelValues(kind).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Package obs exposes service-level prometheus instrumentation.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service instrumentation. Each instance owns its own
// prometheus registry, so tests can create metrics freely without duplicate
// registration panics.
type Metrics struct {
	reg *prometheus.Registry

	SignalResolves   *prometheus.CounterVec
	ResolveSeconds   prometheus.Histogram
	RegistryDevices  prometheus.Gauge
	RatioCacheHits   prometheus.Counter
	RatioCacheMisses prometheus.Counter
}

// New creates and registers the service metrics.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		SignalResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vizlab_signal_resolves_total",
			Help: "Signal resolutions by outcome.",
		}, []string{"status"}),
		ResolveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vizlab_signal_resolve_seconds",
			Help:    "Time to validate, load and assemble one signal.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		RegistryDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vizlab_registry_devices",
			Help: "Devices in the current registry snapshot.",
		}),
		RatioCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vizlab_ratio_cache_hits_total",
			Help: "Ratio requests served from the session cache.",
		}),
		RatioCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vizlab_ratio_cache_misses_total",
			Help: "Ratio requests that had to be derived.",
		}),
	}
	m.reg.MustRegister(
		m.SignalResolves,
		m.ResolveSeconds,
		m.RegistryDevices,
		m.RatioCacheHits,
		m.RatioCacheMisses,
	)
	return m
}

// Handler serves the /metrics scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

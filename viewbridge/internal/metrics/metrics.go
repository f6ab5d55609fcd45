// Package metrics exposes Prometheus collectors for view-state passes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pass outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeNoHook = "no_hook"
	OutcomeError  = "error"
)

// Metrics groups the bridge collectors on their own registry so several
// bridges (or tests) never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	passes        *prometheus.CounterVec
	passDuration  prometheus.Histogram
	nodesVisited  prometheus.Gauge
	viewStateSize prometheus.Gauge
	skipped       prometheus.Counter
	notifications prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "viewbridge",
			Name:      "passes_total",
			Help:      "View-state passes by outcome.",
		}, []string{"outcome"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "viewbridge",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a full walk and geometry pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		nodesVisited: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "viewbridge",
			Name:      "nodes_visited",
			Help:      "Render nodes visited by the last pass.",
		}),
		viewStateSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "viewbridge",
			Name:      "view_state_entries",
			Help:      "Entries in the last published view state.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "viewbridge",
			Name:      "skipped_nodes_total",
			Help:      "Tagged nodes or slot markers skipped because resolution failed.",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "viewbridge",
			Name:      "change_notifications_total",
			Help:      "Structural or size change notifications received from the page.",
		}),
	}
	m.registry.MustRegister(m.passes, m.passDuration, m.nodesVisited,
		m.viewStateSize, m.skipped, m.notifications)
	return m
}

// ObservePass records one pass.
func (m *Metrics) ObservePass(outcome string, d time.Duration, visited, entries, skipped int) {
	m.passes.WithLabelValues(outcome).Inc()
	m.passDuration.Observe(d.Seconds())
	if outcome != OutcomeOK {
		return
	}
	m.nodesVisited.Set(float64(visited))
	m.viewStateSize.Set(float64(entries))
	m.skipped.Add(float64(skipped))
}

// Notification records one change notification.
func (m *Metrics) Notification() {
	m.notifications.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

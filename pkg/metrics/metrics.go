// Package metrics exposes sensor activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors updated by the sensor hooks.
type Metrics struct {
	registry *prometheus.Registry

	Ticks          *prometheus.CounterVec
	Reloads        *prometheus.CounterVec
	ReloadDuration *prometheus.HistogramVec
	Watermark      *prometheus.GaugeVec
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tablewatch_sensor_ticks_total",
				Help: "Total number of sensor evaluations",
			},
			[]string{"sensor", "changed"},
		),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tablewatch_reloads_total",
				Help: "Total number of reload requests by outcome",
			},
			[]string{"sensor", "outcome"},
		),
		ReloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tablewatch_reload_tick_duration_seconds",
				Help:    "Duration of sensor ticks that issued a reload request",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sensor"},
		),
		Watermark: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tablewatch_manifest_mtime_seconds",
				Help: "Last observed manifest modification time",
			},
			[]string{"sensor"},
		),
	}
	m.registry.MustRegister(m.Ticks, m.Reloads, m.ReloadDuration, m.Watermark)
	return m
}

// Hooks returns sensor hooks that record every evaluation.
func (m *Metrics) Hooks() domain.SensorHooks {
	return domain.SensorHooks{
		OnEvaluate: func(ctx context.Context, e *domain.Evaluation) {
			changed := "false"
			if e.Changed {
				changed = "true"
			}
			m.Ticks.WithLabelValues(e.Sensor, changed).Inc()
			if e.CurrentMtime > 0 {
				m.Watermark.WithLabelValues(e.Sensor).Set(e.CurrentMtime)
			}
			if e.Outcome != nil {
				m.ReloadDuration.WithLabelValues(e.Sensor).Observe(e.Duration.Seconds())
			}
		},
		OnReload: func(ctx context.Context, e *domain.Evaluation) {
			m.Reloads.WithLabelValues(e.Sensor, string(e.Outcome.Kind)).Inc()
		},
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes engine activity as Prometheus metrics by
// bridging lifecycle hooks to collectors on a private registry.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdancy/bramble"
)

// Metrics holds the engine collectors and the registry they live on.
type Metrics struct {
	registry *prometheus.Registry

	expansions    *prometheus.CounterVec
	renders       *prometheus.CounterVec
	cacheProbes   *prometheus.CounterVec
	renderSeconds prometheus.Histogram
	segments      prometheus.Histogram
}

// New builds the collectors on a fresh registry, including the standard
// Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		expansions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_expansions_total",
				Help: "Total number of grammar expansions",
			},
			[]string{"status"},
		),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_renders_total",
				Help: "Total number of renders",
			},
			[]string{"source"},
		),
		cacheProbes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_cache_probes_total",
				Help: "Render cache lookups by result",
			},
			[]string{"result"},
		),
		renderSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bramble_render_duration_seconds",
				Help:    "Wall time per render",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		segments: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bramble_render_segments",
				Help:    "Segments emitted per render",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}

	m.registry.MustRegister(
		m.expansions,
		m.renders,
		m.cacheProbes,
		m.renderSeconds,
		m.segments,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() bramble.LifecycleHooks {
	return bramble.LifecycleHooks{
		OnExpand: func(_ context.Context, e *bramble.ExpandEvent) {
			status := "ok"
			if e.Truncated {
				status = "truncated"
			}
			m.expansions.WithLabelValues(status).Inc()
		},
		OnRender: func(_ context.Context, e *bramble.RenderEvent) {
			source := "computed"
			if e.CacheHit {
				source = "cache"
			}
			m.renders.WithLabelValues(source).Inc()
			m.renderSeconds.Observe(e.Elapsed.Seconds())
			m.segments.Observe(float64(e.Segments))
		},
		OnCacheHit: func(context.Context, *bramble.CacheEvent) {
			m.cacheProbes.WithLabelValues("hit").Inc()
		},
		OnCacheMiss: func(context.Context, *bramble.CacheEvent) {
			m.cacheProbes.WithLabelValues("miss").Inc()
		},
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and composition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

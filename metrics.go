package spacetraveling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "spacetraveling"

// appMetrics lives on its own registry so several Apps can coexist in one
// process.
type appMetrics struct {
	registry *prometheus.Registry

	pagesServed     *prometheus.CounterVec
	fallbackRenders *prometheus.CounterVec
	loadMore        *prometheus.CounterVec
}

func newAppMetrics() *appMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &appMetrics{
		registry: reg,
		pagesServed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "pages_served_total",
				Help:      "Pages served from the page store, by source",
			},
			[]string{"source"},
		),
		fallbackRenders: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "fallback_renders_total",
				Help:      "On-demand renders of posts missing from the build, by result",
			},
			[]string{"result"},
		),
		loadMore: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "load_more_total",
				Help:      "Load more requests, by result",
			},
			[]string{"result"},
		),
	}
}

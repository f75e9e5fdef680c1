package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeRejected = "rejected"
	OutcomeUpstream = "upstream_error"
)

type Metrics struct {
	registry *prometheus.Registry

	Classifications    *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scamshield_classifications_total",
				Help: "Classification requests handled, labeled by task and outcome.",
			},
			[]string{"task", "outcome"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scamshield_generation_duration_seconds",
				Help:    "Duration of calls to the generation service in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
	}

	m.registry.MustRegister(
		m.Classifications,
		m.GenerationDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Observe(task, outcome string) {
	m.Classifications.WithLabelValues(task, outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

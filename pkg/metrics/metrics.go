// Package metrics exposes Prometheus instrumentation for the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for AnalysesTotal.
const (
	OutcomeSuccess         = "success"
	OutcomeEmpty           = "empty_submission"
	OutcomeExtractionError = "extraction_error"
	OutcomeOversize        = "oversize_upload"
	OutcomeGenerationError = "generation_error"
	OutcomeUnsaved         = "persistence_error"
)

// Mode labels.
const (
	ModeStandalone  = "standalone"
	ModeComparative = "comparative"
	ModeNone        = "none"
)

type Metrics struct {
	registry *prometheus.Registry

	analyses           *prometheus.CounterVec
	extractions        *prometheus.CounterVec
	generationDuration prometheus.Histogram
}

// New builds a Metrics bound to its own registry so tests can create as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billwise",
			Name:      "analyses_total",
			Help:      "Bill analysis requests by prompt mode and outcome.",
		}, []string{"mode", "outcome"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billwise",
			Name:      "extractions_total",
			Help:      "Text extractions by source kind.",
		}, []string{"kind"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "billwise",
			Name:      "generation_duration_seconds",
			Help:      "Latency of generation backend calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
	}
	reg.MustRegister(m.analyses, m.extractions, m.generationDuration)
	return m
}

func (m *Metrics) ObserveAnalysis(mode, outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveExtraction(kind string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

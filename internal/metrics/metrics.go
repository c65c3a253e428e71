// Package metrics holds the domain collectors of the text-extraction pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	cacheLookups       *prometheus.CounterVec
	extractions        *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	cacheWriteFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docviewer_text_cache_lookups_total",
				Help: "Text cache lookups by backend and result.",
			},
			[]string{"backend", "result"},
		),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docviewer_extractions_total",
				Help: "Extraction attempts by file extension and outcome.",
			},
			[]string{"ext", "outcome"},
		),
		extractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docviewer_extraction_duration_seconds",
				Help:    "Time spent fetching and extracting a document on a cache miss.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"ext"},
		),
		cacheWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docviewer_text_cache_write_failures_total",
			Help: "Write-backs of freshly extracted text that failed.",
		}),
	}

	for _, c := range []prometheus.Collector{m.cacheLookups, m.extractions, m.extractionDuration, m.cacheWriteFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) CacheHit(backend string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(backend, "hit").Inc()
}

func (m *Metrics) CacheMiss(backend string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(backend, "miss").Inc()
}

// Extraction records one dispatcher run.
func (m *Metrics) Extraction(ext, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(ext, outcome).Inc()
	m.extractionDuration.WithLabelValues(ext).Observe(took.Seconds())
}

func (m *Metrics) CacheWriteFailed() {
	if m == nil {
		return
	}
	m.cacheWriteFailures.Inc()
}

// Package metrics exposes Prometheus instrumentation for the posting pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	keywordOutcomes   *prometheus.CounterVec
	runs              *prometheus.CounterVec
	keywordsCollected *prometheus.CounterVec
	imageFailures     prometheus.Counter
	externalDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		keywordOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscanner_autopost_keywords_total",
			Help: "Keywords processed by the auto-post pipeline by outcome",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscanner_autopost_runs_total",
			Help: "Pipeline runs by type and final status",
		}, []string{"type", "status"}),
		keywordsCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscanner_keywords_collected_total",
			Help: "Trending keywords seen by collection, split into inserted and existing",
		}, []string{"result"}),
		imageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendscanner_image_lookup_failures_total",
			Help: "Image lookups that failed or returned nothing",
		}),
		externalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendscanner_external_request_duration_seconds",
			Help:    "Latency of calls to external APIs",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"client"}),
	}

	reg.MustRegister(m.keywordOutcomes, m.runs, m.keywordsCollected, m.imageFailures, m.externalDuration)
	return m
}

// KeywordOutcome counts one processed keyword; outcome is "created" or a skip reason
func (m *Metrics) KeywordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.keywordOutcomes.WithLabelValues(outcome).Inc()
}

// Run counts one finished run
func (m *Metrics) Run(runType, status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(runType, status).Inc()
}

// KeywordsCollected counts collected keywords
func (m *Metrics) KeywordsCollected(inserted, existing int) {
	if m == nil {
		return
	}
	m.keywordsCollected.WithLabelValues("inserted").Add(float64(inserted))
	m.keywordsCollected.WithLabelValues("existing").Add(float64(existing))
}

// ImageLookupFailed counts one failed image lookup
func (m *Metrics) ImageLookupFailed() {
	if m == nil {
		return
	}
	m.imageFailures.Inc()
}

// ObserveExternal records the latency of an external call started at start
func (m *Metrics) ObserveExternal(client string, start time.Time) {
	if m == nil {
		return
	}
	m.externalDuration.WithLabelValues(client).Observe(time.Since(start).Seconds())
}

// Package metrics holds the Prometheus collectors for the extraction
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback reasons.
const (
	FallbackProduct = "product_detected"
	FallbackUnknown = "unknown_content"
	FallbackFetch   = "fetch_failed"
)

// Metrics groups the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	Extractions        *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	CacheRequests      *prometheus.CounterVec
	Fallbacks          *prometheus.CounterVec
}

// New registers the collectors on reg. Use prometheus.NewRegistry in tests
// so runs do not collide on the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linkmeta_extractions_total",
			Help: "Extraction results by content type and provenance",
		}, []string{"content_type", "source"}),

		ExtractionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linkmeta_extraction_duration_seconds",
			Help:    "Time spent extracting a single URL",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"extractor"}),

		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linkmeta_cache_requests_total",
			Help: "Cache lookups by outcome (hit, miss, expired)",
		}, []string{"result"}),

		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linkmeta_fallbacks_total",
			Help: "Registry fallbacks taken when no dedicated extractor matched",
		}, []string{"reason"}),
	}
}

func (m *Metrics) ObserveExtraction(extractor, contentType, source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(contentType, source).Inc()
	m.ExtractionDuration.WithLabelValues(extractor).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(reason).Inc()
}

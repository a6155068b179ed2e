package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts classification cache behaviour.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheErrors *prometheus.CounterVec
	Tiers       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealer_classification_cache_hits_total",
			Help: "Classification reads served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dealer_classification_cache_misses_total",
			Help: "Classification reads computed from the sale store",
		}),
		CacheErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dealer_classification_cache_errors_total",
			Help: "Classification cache errors by operation",
		}, []string{"op"}),
		Tiers: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dealer_classification_computed_total",
			Help: "Computed classifications by tier",
		}, []string{"tier"}),
	}
}

func (m *Metrics) IncrementHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncrementMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) IncrementCacheError(op string) {
	if m != nil {
		m.CacheErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IncrementTier(tier string) {
	if m != nil {
		m.Tiers.WithLabelValues(tier).Inc()
	}
}

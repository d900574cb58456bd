// Package metrics exposes Prometheus instrumentation for lookup races.
// Collection is optional; a nil *Metrics disables it everywhere.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for adapter attempts, race outcomes and the
// result cache.
type Metrics struct {
	attempts        *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// New registers the collectors on reg. Pass a dedicated Registerer in tests
// to avoid duplicate registration on the default gatherer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brlookup",
			Name:      "adapter_attempts_total",
			Help:      "Adapter call attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brlookup",
			Name:      "resolve_duration_seconds",
			Help:      "End-to-end resolve duration by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brlookup",
			Name:      "cache_hits_total",
			Help:      "Result cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brlookup",
			Name:      "cache_misses_total",
			Help:      "Result cache misses.",
		}),
	}
	reg.MustRegister(m.attempts, m.resolveDuration, m.cacheHits, m.cacheMisses)
	return m
}

// ObserveAttempt records one adapter attempt.
func (m *Metrics) ObserveAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(provider, outcome).Inc()
}

// ObserveResolve records a finished race.
func (m *Metrics) ObserveResolve(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

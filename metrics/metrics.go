// Package metrics exports count cache events to Prometheus.
package metrics

import (
	"errors"

	"github.com/goliatone/go-task-countcache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskcache"

// CountCacheMetrics implements cache.Hooks with Prometheus counters.
type CountCacheMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	failures      prometheus.Counter
	invalidations prometheus.Counter
	swept         prometheus.Counter
	generation    prometheus.Gauge
}

var _ cache.Hooks = (*CountCacheMetrics)(nil)

// NewCountCacheMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewCountCacheMetrics(reg prometheus.Registerer) (*CountCacheMetrics, error) {
	m := &CountCacheMetrics{}
	var err error

	if m.hits, err = register(reg, countCacheCounter("hits_total", "Count cache lookups served from a live entry")); err != nil {
		return nil, err
	}
	if m.misses, err = register(reg, countCacheCounter("misses_total", "Count cache lookups that had to compute")); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, countCacheCounter("compute_failures_total", "Count computations that returned an error")); err != nil {
		return nil, err
	}
	if m.invalidations, err = register(reg, countCacheCounter("invalidations_total", "Calls to InvalidateAll")); err != nil {
		return nil, err
	}
	if m.swept, err = register(reg, countCacheCounter("swept_entries_total", "Dead entries removed by the sweeper")); err != nil {
		return nil, err
	}
	m.generation, err = register(reg, prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "count",
			Name:      "generation",
			Help:      "Current invalidation generation",
		},
	))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// TrackEntries registers a gauge reporting the number of stored entries.
func TrackEntries(reg prometheus.Registerer, size func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "count",
			Name:      "entries",
			Help:      "Entries stored in the count cache, including dead ones",
		},
		func() float64 { return float64(size()) },
	))
}

func (m *CountCacheMetrics) CountHit(string)                  { m.hits.Inc() }
func (m *CountCacheMetrics) CountMiss(string)                 { m.misses.Inc() }
func (m *CountCacheMetrics) CountComputeFailed(string, error) { m.failures.Inc() }
func (m *CountCacheMetrics) CountSwept(removed int)           { m.swept.Add(float64(removed)) }

func (m *CountCacheMetrics) CountInvalidated(generation uint64) {
	m.invalidations.Inc()
	m.generation.Set(float64(generation))
}

func countCacheCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "count",
			Name:      name,
			Help:      help,
		},
	)
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Package cache provides the count cache, filter fingerprints and the item
// cache used by the caching task repository.
//
// # Overview
//
// The package exports three interfaces and their default implementations:
//
//   - CountCache: caches row counts keyed by filter fingerprint, with a fixed
//     TTL and constant-time InvalidateAll
//   - FingerprintSerializer: derives count keys from the fields of a filter
//     struct tagged with `count`
//   - CacheService with KeySerializer: a read-through cache for single
//     records, backed by sturdyc
//
// # Count Cache
//
//	counts, err := cache.NewCountCache(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer counts.Close()
//
//	n, err := counts.GetOrCompute(ctx, fingerprint, func(ctx context.Context) (int, error) {
//		return store.Count(ctx, filter)
//	})
//
// An entry is live while it is younger than Config.TTL and was computed in the
// current generation. InvalidateAll advances the generation; entries from
// older generations are never served again and are removed lazily, on the
// next write to the same fingerprint or by the background sweeper when
// Config.CleanupInterval is set.
//
// Concurrent misses for the same fingerprint share one compute call. A
// compute that finishes after an InvalidateAll returns its result to the
// callers that were waiting on it but does not store it. Errors are never
// cached.
//
// # Fingerprints
//
// Only fields tagged `count` take part in a fingerprint, so filters that only
// differ in sorting or pagination share a key:
//
//	type Filter struct {
//		Status   *Status `count:"status"`
//		Title    string  `count:"title"`
//		SortBy   string
//		Page     int
//	}
//
//	fp := cache.NewFingerprintSerializer().Fingerprint("tasks.count", f)
//	// tasks.count::status="Todo"::title="report"
//
// String values are quoted, so user input cannot inject a separator. Nil
// pointers render as "*". Fingerprints longer than MaxFingerprintLength are
// replaced by an xxhash digest.
//
// # Item Cache
//
// GetOrFetch wraps a CacheService with a typed fetch function:
//
//	key := keys.SerializeKey("GetByID", id)
//	t, err := cache.GetOrFetch(ctx, items, key, func(ctx context.Context) (*task.Task, error) {
//		return store.GetByID(ctx, id)
//	})
//
// KeySerializer renders fmt.Stringer arguments such as uuid.UUID through
// String, so keys stay stable across processes.
//
// # Hooks
//
// WithHooks attaches a Hooks implementation that observes hits, misses,
// failed computes, invalidations and sweeps. The metrics package provides a
// Prometheus implementation.
package cache

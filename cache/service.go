package cache

import (
	"context"
	"errors"

	"github.com/goliatone/go-task-countcache/internal/cacheinfra"
)

// ErrInvalidResultType is returned by GetOrFetch when the cached value is not of the requested type.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// ComputeFn computes the true count for a fingerprint by querying the store.
type ComputeFn = func(ctx context.Context) (int, error)

// CountCache caches expensive row counts keyed by filter fingerprint.
//
// Entries are tagged with the generation that was current when they were
// computed. InvalidateAll advances the generation, which makes every stored
// entry unreadable at once without visiting any of them.
type CountCache interface {
	// GetOrCompute returns the live count for fingerprint, invoking compute
	// only on a miss. Compute failures are returned unchanged and never cached.
	GetOrCompute(ctx context.Context, fingerprint string, compute ComputeFn) (int, error)
	// InvalidateAll makes every entry stored so far unreadable.
	InvalidateAll()
	// Generation returns the current invalidation generation.
	Generation() uint64
	// Len returns the number of physically stored entries, live or dead.
	Len() int
	Close() error
}

// Hooks receives count cache events. Implementations must be cheap and
// non-blocking; they run on the request path.
type Hooks = cacheinfra.CountHooks

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through item cache used for single-record lookups.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}

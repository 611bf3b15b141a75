package cacheinfra

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// maxFlightRetries bounds how often a waiter restarts a coalesced compute
// whose leader was cancelled.
const maxFlightRetries = 3

// CountHooks receives count cache events. Methods run on the request path.
type CountHooks interface {
	CountHit(fingerprint string)
	CountMiss(fingerprint string)
	CountComputeFailed(fingerprint string, err error)
	CountInvalidated(generation uint64)
	CountSwept(removed int)
}

type nopHooks struct{}

func (nopHooks) CountHit(string)                  {}
func (nopHooks) CountMiss(string)                 {}
func (nopHooks) CountComputeFailed(string, error) {}
func (nopHooks) CountInvalidated(uint64)          {}
func (nopHooks) CountSwept(int)                   {}

// countEntry is an immutable cached count. It is only readable while its
// generation is current and its expiry lies in the future.
type countEntry struct {
	value      int
	generation uint64
	expiresAt  time.Time
}

func (e countEntry) live(generation uint64, now time.Time) bool {
	return e.generation == generation && now.Before(e.expiresAt)
}

// CountOption customizes a CountCache.
type CountOption func(*CountCache)

// WithClock replaces the wall clock used for expiry.
func WithClock(clock clockwork.Clock) CountOption {
	return func(c *CountCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithHooks registers an event observer.
func WithHooks(hooks CountHooks) CountOption {
	return func(c *CountCache) {
		if hooks != nil {
			c.hooks = hooks
		}
	}
}

// CountCache maps filter fingerprints to counts. Invalidation advances a
// single generation counter; entries written under an older generation are
// left in place and treated as misses.
type CountCache struct {
	ttl     time.Duration
	clock   clockwork.Clock
	hooks   CountHooks
	entries *xsync.MapOf[string, countEntry]
	gen     atomic.Uint64
	flight  singleflight.Group

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewCountCache validates cfg and returns a ready cache. When
// cfg.CleanupInterval is positive a sweeper goroutine runs until Close.
func NewCountCache(cfg CountConfig, opts ...CountOption) (*CountCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &CountCache{
		ttl:     cfg.TTL,
		clock:   clockwork.NewRealClock(),
		hooks:   nopHooks{},
		entries: xsync.NewMapOf[string, countEntry](),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.CleanupInterval > 0 {
		c.stopCh = make(chan struct{})
		c.wg.Add(1)
		go c.sweepLoop(cfg.CleanupInterval)
	}

	return c, nil
}

// GetOrCompute returns the live count for fingerprint or computes it.
//
// compute runs without any cache lock held. Concurrent misses for the same
// fingerprint in the same generation share one compute call. A result whose
// generation was invalidated while computing is returned but not stored.
func (c *CountCache) GetOrCompute(ctx context.Context, fingerprint string, compute func(context.Context) (int, error)) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	gen := c.gen.Load()
	if e, ok := c.entries.Load(fingerprint); ok && e.live(gen, c.clock.Now()) {
		c.hooks.CountHit(fingerprint)
		return e.value, nil
	}
	c.hooks.CountMiss(fingerprint)

	flightKey := strconv.FormatUint(gen, 10) + "\x00" + fingerprint
	for attempt := 0; ; attempt++ {
		ch := c.flight.DoChan(flightKey, func() (any, error) {
			return c.computeAndStore(ctx, fingerprint, gen, compute)
		})

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(int), nil
			}
			// The shared compute ran under another caller's context. If that
			// caller went away, try again under ours.
			if res.Shared && isContextErr(res.Err) && ctx.Err() == nil && attempt < maxFlightRetries {
				continue
			}
			return 0, res.Err
		}
	}
}

func (c *CountCache) computeAndStore(ctx context.Context, fingerprint string, gen uint64, compute func(context.Context) (int, error)) (int, error) {
	n, err := compute(ctx)
	if err != nil {
		c.hooks.CountComputeFailed(fingerprint, err)
		return 0, err
	}
	if c.gen.Load() == gen {
		c.entries.Store(fingerprint, countEntry{
			value:      n,
			generation: gen,
			expiresAt:  c.clock.Now().Add(c.ttl),
		})
	}
	return n, nil
}

// InvalidateAll makes every stored entry unreadable. It costs one atomic
// increment regardless of how many entries exist.
func (c *CountCache) InvalidateAll() {
	next := c.gen.Add(1)
	c.hooks.CountInvalidated(next)
}

// Generation returns the current invalidation generation.
func (c *CountCache) Generation() uint64 {
	return c.gen.Load()
}

// Len returns the number of entries in the backing map, including entries
// that are expired or belong to an older generation.
func (c *CountCache) Len() int {
	return c.entries.Size()
}

// Sweep removes expired and dead-generation entries and returns how many
// were removed. An entry replaced concurrently with a live one is kept.
func (c *CountCache) Sweep() int {
	gen := c.gen.Load()
	now := c.clock.Now()
	removed := 0

	c.entries.Range(func(key string, e countEntry) bool {
		if e.live(gen, now) {
			return true
		}
		c.entries.Compute(key, func(cur countEntry, loaded bool) (countEntry, bool) {
			if !loaded || cur != e {
				return cur, !loaded
			}
			removed++
			return cur, true
		})
		return true
	})

	if removed > 0 {
		c.hooks.CountSwept(removed)
	}
	return removed
}

// Close stops the sweeper. It is safe to call more than once.
func (c *CountCache) Close() error {
	c.closeOnce.Do(func() {
		if c.stopCh != nil {
			close(c.stopCh)
			c.wg.Wait()
		}
	})
	return nil
}

func (c *CountCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			c.Sweep()
		case <-c.stopCh:
			return
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

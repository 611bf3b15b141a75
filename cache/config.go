package cache

import (
	"time"

	"github.com/goliatone/go-task-countcache/internal/cacheinfra"
	"github.com/jonboulle/clockwork"
)

// Config configures the count cache.
type Config struct {
	// TTL is the fixed lifetime of a cached count. Default 30s.
	TTL time.Duration
	// CleanupInterval is how often dead entries are swept. Zero disables sweeping.
	CleanupInterval time.Duration
}

// ItemConfig configures the sturdyc-backed item cache.
type ItemConfig = cacheinfra.ItemConfig

// DefaultConfig returns the count cache defaults.
func DefaultConfig() Config {
	d := cacheinfra.DefaultCountConfig()
	return Config{TTL: d.TTL, CleanupInterval: d.CleanupInterval}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// DefaultItemConfig returns the item cache defaults.
func DefaultItemConfig() ItemConfig {
	return cacheinfra.DefaultItemConfig()
}

// Option customizes a count cache built by NewCountCache.
type Option = cacheinfra.CountOption

// WithClock sets the clock used for entry expiry.
func WithClock(clock clockwork.Clock) Option {
	return cacheinfra.WithClock(clock)
}

// WithHooks registers an observer for cache events.
func WithHooks(hooks Hooks) Option {
	return cacheinfra.WithHooks(hooks)
}

// NewCountCache constructs the default count cache implementation.
func NewCountCache(cfg Config, opts ...Option) (CountCache, error) {
	c, err := cacheinfra.NewCountCache(cfg.toInternal(), opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewCacheService constructs the default item cache implementation.
func NewCacheService(cfg ItemConfig) (CacheService, error) {
	c, err := cacheinfra.NewItemCache(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c Config) toInternal() cacheinfra.CountConfig {
	return cacheinfra.CountConfig{
		TTL:             c.TTL,
		CleanupInterval: c.CleanupInterval,
	}
}

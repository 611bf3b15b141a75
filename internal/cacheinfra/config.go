package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

const (
	// DefaultCountTTL is how long a cached count stays readable.
	DefaultCountTTL = 30 * time.Second
	// DefaultCleanupInterval is how often dead count entries are swept.
	DefaultCleanupInterval = time.Minute
)

// CountConfig configures the generation-invalidated count cache.
type CountConfig struct {
	// TTL is the fixed lifetime of an entry from insertion.
	// Reads do not extend it. Must be greater than 0.
	TTL time.Duration

	// CleanupInterval sets how often expired and dead-generation entries are
	// removed from the backing map. Zero disables the sweeper; dead entries
	// are then only replaced when their fingerprint is computed again.
	CleanupInterval time.Duration
}

// DefaultCountConfig returns the count cache defaults.
func DefaultCountConfig() CountConfig {
	return CountConfig{
		TTL:             DefaultCountTTL,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Validate checks if the configuration values are valid.
func (c CountConfig) Validate() error {
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.CleanupInterval < 0 {
		return &ConfigError{Field: "CleanupInterval", Message: "must be non-negative"}
	}
	return nil
}

// ItemConfig configures the sturdyc item cache. Capacity, NumShards and TTL
// must be positive; EvictionPercentage is 1..100.
//
// Early refreshes and missing-record storage are never enabled: either would
// let the cache write a record back after a task write removed it.
type ItemConfig struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	// EvictionInterval overrides the sturdyc eviction tick. Zero keeps the default.
	EvictionInterval time.Duration
}

// DefaultItemConfig returns the item cache defaults.
func DefaultItemConfig() ItemConfig {
	return ItemConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the optional parts of ItemConfig to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c ItemConfig) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// Validate checks if the configuration values are valid.
func (c ItemConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

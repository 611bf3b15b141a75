// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/goliatone/go-task-countcache/cache"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

type CacheConfig struct {
	Count CountCacheConfig `yaml:"count"`
	Items ItemCacheConfig  `yaml:"items"`
}

// CountCacheConfig configures the filtered count cache.
type CountCacheConfig struct {
	TTL             time.Duration `yaml:"ttl" default:"30s"`
	CleanupInterval time.Duration `yaml:"cleanupInterval" default:"1m"`
}

// ItemCacheConfig configures the single-task cache used by GetByID.
type ItemCacheConfig struct {
	Enabled            bool          `yaml:"enabled" default:"true"`
	Capacity           int           `yaml:"capacity" default:"10000"`
	NumShards          int           `yaml:"numShards" default:"256"`
	TTL                time.Duration `yaml:"ttl" default:"5m"`
	EvictionPercentage int           `yaml:"evictionPercentage" default:"10"`
	// EvictionInterval overrides the sturdyc eviction tick when positive.
	EvictionInterval time.Duration `yaml:"evictionInterval"`
}

type DatabaseConfig struct {
	// Driver is sqlite3 or postgres.
	Driver string `yaml:"driver" default:"sqlite3"`
	DSN    string `yaml:"dsn" default:":memory:"`
}

type LogConfig struct {
	// Backend is zap or logrus.
	Backend string `yaml:"backend" default:"zap"`
	Level   string `yaml:"level" default:"info"`
	// Format is json or text.
	Format string `yaml:"format" default:"json"`
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("can't apply default values: %w", err)
	}
	return cfg, nil
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse applies defaults, overlays data and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("wrong file structure: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := c.Cache.Count.ToCache().Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("cache.count: %w", err))
	}
	if c.Cache.Items.Enabled {
		if err := c.Cache.Items.ToCache().Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("cache.items: %w", err))
		}
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		result = multierror.Append(result, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		result = multierror.Append(result, fmt.Errorf("database.dsn: must not be empty"))
	}

	switch c.Log.Backend {
	case "zap", "logrus":
	default:
		result = multierror.Append(result, fmt.Errorf("log.backend: unsupported backend %q", c.Log.Backend))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log.level: unsupported level %q", c.Log.Level))
	}

	return result.ErrorOrNil()
}

// ToCache converts to the count cache configuration.
func (c CountCacheConfig) ToCache() cache.Config {
	return cache.Config{
		TTL:             c.TTL,
		CleanupInterval: c.CleanupInterval,
	}
}

// ToCache converts to the item cache configuration.
func (c ItemCacheConfig) ToCache() cache.ItemConfig {
	cfg := cache.DefaultItemConfig()
	cfg.Capacity = c.Capacity
	cfg.NumShards = c.NumShards
	cfg.TTL = c.TTL
	cfg.EvictionPercentage = c.EvictionPercentage
	cfg.EvictionInterval = c.EvictionInterval
	return cfg
}

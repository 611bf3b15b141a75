package di

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-task-countcache/cache"
	"github.com/goliatone/go-task-countcache/internal/store"
	"github.com/goliatone/go-task-countcache/log/logruslog"
	"github.com/goliatone/go-task-countcache/log/zaplog"
	"github.com/goliatone/go-task-countcache/metrics"
	"github.com/goliatone/go-task-countcache/pkg/config"
	"github.com/goliatone/go-task-countcache/repositorycache"
	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Container wires the task repository together with its caches, store,
// logger and metrics from a single configuration.
type Container struct {
	config   config.Config
	logger   repositorycache.Logger
	zap      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.CountCacheMetrics
	counts   cache.CountCache
	items    cache.CacheService
	keys     cache.KeySerializer
	db       *bun.DB
	ownsDB   bool
	store    *store.TaskStore
	repo     *repositorycache.CachedTaskRepository

	closeOnce sync.Once
	closeErr  error
}

type options struct {
	db     *bun.DB
	clock  clockwork.Clock
	logger repositorycache.Logger
}

// Option customizes container construction.
type Option func(*options)

// WithDB uses an already opened and migrated database. The container does not
// close it.
func WithDB(db *bun.DB) Option {
	return func(o *options) { o.db = db }
}

// WithClock sets the clock used by the count cache and the store.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger overrides the logger built from the log configuration.
func WithLogger(l repositorycache.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewContainer builds every component described by cfg. On failure the
// components created so far are released.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("di: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		config:   *cfg,
		registry: prometheus.NewRegistry(),
		keys:     cache.NewDefaultKeySerializer(),
	}

	if err := c.init(ctx, o); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithDefaults builds a container from config.Default, backed by
// an in-memory SQLite database.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}
	return NewContainer(ctx, cfg, opts...)
}

func (c *Container) init(ctx context.Context, o options) error {
	if o.logger != nil {
		c.logger = o.logger
	} else {
		l, z, err := newLogger(c.config.Log)
		if err != nil {
			return err
		}
		c.logger, c.zap = l, z
	}

	m, err := metrics.NewCountCacheMetrics(c.registry)
	if err != nil {
		return fmt.Errorf("di: register count cache metrics: %w", err)
	}
	c.metrics = m

	c.counts, err = cache.NewCountCache(c.config.Cache.Count.ToCache(), cache.WithClock(o.clock), cache.WithHooks(m))
	if err != nil {
		return fmt.Errorf("di: count cache: %w", err)
	}
	if err := metrics.TrackEntries(c.registry, c.counts.Len); err != nil {
		return fmt.Errorf("di: register count cache size: %w", err)
	}

	if c.config.Cache.Items.Enabled {
		c.items, err = cache.NewCacheService(c.config.Cache.Items.ToCache())
		if err != nil {
			return fmt.Errorf("di: item cache: %w", err)
		}
	}

	if o.db != nil {
		c.db = o.db
	} else {
		c.db, err = store.Open(c.config.Database.Driver, c.config.Database.DSN)
		if err != nil {
			return err
		}
		c.ownsDB = true
		if err := store.Migrate(ctx, c.db); err != nil {
			return err
		}
	}

	c.store = store.NewTaskStore(c.db, store.WithClock(o.clock))
	c.repo = repositorycache.New(c.store, c.counts, c.items,
		repositorycache.WithKeySerializer(c.keys),
		repositorycache.WithLogger(c.logger),
	)

	c.logger.Info("task repository ready", repositorycache.Fields{
		"driver":     c.config.Database.Driver,
		"count_ttl":  c.config.Cache.Count.TTL.String(),
		"item_cache": c.items != nil,
	})
	return nil
}

// Repository returns the cached task repository.
func (c *Container) Repository() *repositorycache.CachedTaskRepository { return c.repo }

// Store returns the uncached task store.
func (c *Container) Store() *store.TaskStore { return c.store }

// CountCache returns the shared count cache.
func (c *Container) CountCache() cache.CountCache { return c.counts }

// ItemCache returns the item cache, or nil when it is disabled.
func (c *Container) ItemCache() cache.CacheService { return c.items }

// KeySerializer returns the item cache key serializer.
func (c *Container) KeySerializer() cache.KeySerializer { return c.keys }

// DB returns the database handle.
func (c *Container) DB() *bun.DB { return c.db }

// Registry returns the registry holding the cache metrics.
func (c *Container) Registry() *prometheus.Registry { return c.registry }

// Logger returns the logger handed to the repository.
func (c *Container) Logger() repositorycache.Logger { return c.logger }

// Config returns a copy of the configuration the container was built from.
func (c *Container) Config() config.Config { return c.config }

// Close stops the count cache sweeper and closes the database when the
// container opened it. It is safe to call more than once.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		var result *multierror.Error
		if c.counts != nil {
			if err := c.counts.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("close count cache: %w", err))
			}
		}
		if c.db != nil && c.ownsDB {
			if err := c.db.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("close database: %w", err))
			}
		}
		if c.zap != nil {
			// stderr sync fails on some terminals
			_ = c.zap.Sync()
		}
		c.closeErr = result.ErrorOrNil()
	})
	return c.closeErr
}

func newLogger(cfg config.LogConfig) (repositorycache.Logger, *zap.Logger, error) {
	switch cfg.Backend {
	case "zap":
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("di: log level: %w", err)
		}
		zc := zap.NewProductionConfig()
		if strings.EqualFold(cfg.Format, "text") {
			zc = zap.NewDevelopmentConfig()
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
		z, err := zc.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("di: build zap logger: %w", err)
		}
		z = z.Named("tasks")
		return zaplog.New(z), z, nil
	case "logrus":
		lvl, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("di: log level: %w", err)
		}
		l := logrus.New()
		l.SetLevel(lvl)
		if strings.EqualFold(cfg.Format, "text") {
			l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
		return logruslog.New(l, "tasks"), nil, nil
	default:
		return nil, nil, fmt.Errorf("di: unsupported log backend %q", cfg.Backend)
	}
}

package repositorycache

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/goliatone/go-task-countcache/cache"
	"github.com/goliatone/go-task-countcache/task"
	"github.com/google/uuid"
)

// CountNamespace prefixes every task count fingerprint.
const CountNamespace = "tasks.count"

// TaskStore is the source of truth the repository decorates.
type TaskStore interface {
	Create(ctx context.Context, t *task.Task) (*task.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	// Update returns the written task and the row it replaced, read in the
	// same transaction as the write.
	Update(ctx context.Context, t *task.Task) (updated, previous *task.Task, err error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, f task.Filter) (int, error)
	List(ctx context.Context, f task.Filter) ([]*task.Task, error)
}

// TaskRepository is the read/write surface handed to callers.
type TaskRepository interface {
	List(ctx context.Context, f task.Filter) (task.Page, error)
	Count(ctx context.Context, f task.Filter) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	Create(ctx context.Context, t *task.Task) (*task.Task, error)
	Update(ctx context.Context, t *task.Task) (*task.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ TaskRepository = (*CachedTaskRepository)(nil)

// CachedTaskRepository serves list totals from a count cache and single
// records from an item cache. Page contents are always read from the store.
type CachedTaskRepository struct {
	base         TaskStore
	counts       cache.CountCache
	items        cache.CacheService
	keys         cache.KeySerializer
	fingerprints cache.FingerprintSerializer
	logger       Logger
	writes       writeFence
}

// writeFence counts task writes in 256 stripes keyed by the last byte of the
// id. A GetByID that sees its stripe move while fetching drops what it stored.
type writeFence [256]atomic.Uint64

func (f *writeFence) stripe(id uuid.UUID) *atomic.Uint64 {
	return &f[id[len(id)-1]]
}

// Option customizes a CachedTaskRepository.
type Option func(*CachedTaskRepository)

// WithKeySerializer replaces the item cache key serializer.
func WithKeySerializer(s cache.KeySerializer) Option {
	return func(r *CachedTaskRepository) {
		if s != nil {
			r.keys = s
		}
	}
}

// WithFingerprintSerializer replaces the count fingerprint serializer.
func WithFingerprintSerializer(s cache.FingerprintSerializer) Option {
	return func(r *CachedTaskRepository) {
		if s != nil {
			r.fingerprints = s
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l Logger) Option {
	return func(r *CachedTaskRepository) {
		if l != nil {
			r.logger = l
		}
	}
}

// New wraps base. items may be nil, in which case GetByID reads through to
// the store.
func New(base TaskStore, counts cache.CountCache, items cache.CacheService, opts ...Option) *CachedTaskRepository {
	r := &CachedTaskRepository{
		base:         base,
		counts:       counts,
		items:        items,
		keys:         cache.NewDefaultKeySerializer(),
		fingerprints: cache.NewFingerprintSerializer(),
		logger:       NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns one page of tasks matching f. The total comes from the count
// cache; the page itself is fetched from the store on every call.
func (r *CachedTaskRepository) List(ctx context.Context, f task.Filter) (task.Page, error) {
	f = f.Normalized()
	if err := f.Validate(); err != nil {
		return task.Page{}, err
	}

	total, err := r.count(ctx, f)
	if err != nil {
		return task.Page{}, err
	}

	items, err := r.base.List(ctx, f)
	if err != nil {
		return task.Page{}, err
	}
	return task.NewPage(items, total, f), nil
}

// Count returns the number of tasks matching f.
func (r *CachedTaskRepository) Count(ctx context.Context, f task.Filter) (int, error) {
	f = f.Normalized()
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return r.count(ctx, f)
}

func (r *CachedTaskRepository) count(ctx context.Context, f task.Filter) (int, error) {
	if freshCountFromContext(ctx) {
		return r.base.Count(ctx, f)
	}

	fp := r.fingerprints.Fingerprint(CountNamespace, f)
	n, err := r.counts.GetOrCompute(ctx, fp, func(ctx context.Context) (int, error) {
		return r.base.Count(ctx, f)
	})
	if err != nil && !isContextErr(err) {
		r.logger.Warn("task count failed", Fields{"fingerprint": fp, "error": err.Error()})
	}
	return n, err
}

// GetByID returns the task with id, served from the item cache when present.
// The returned task is a copy and may be modified freely.
func (r *CachedTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	if r.items == nil {
		return r.base.GetByID(ctx, id)
	}

	stripe := r.writes.stripe(id)
	seen := stripe.Load()
	t, err := cache.GetOrFetch(ctx, r.items, r.itemKey(id), func(ctx context.Context) (*task.Task, error) {
		return r.base.GetByID(ctx, id)
	})
	if stripe.Load() != seen {
		// a write landed while fetching; the stored record may predate it
		r.forgetItem(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, task.ErrNotFound
	}
	return t.Clone(), nil
}

// Create stores t and invalidates every cached count.
func (r *CachedTaskRepository) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	created, err := r.base.Create(ctx, t)
	if err != nil {
		r.logWriteError("create", uuid.Nil, err)
		return nil, err
	}
	r.invalidateCounts("create", created.ID, nil)
	return created, nil
}

// Update stores t. Cached counts are invalidated only when a field that
// filters match on changed; the cached record is always dropped.
func (r *CachedTaskRepository) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	updated, before, err := r.base.Update(ctx, t)
	if err != nil {
		r.logWriteError("update", t.ID, err)
		return nil, err
	}
	r.itemWritten(ctx, t.ID)

	changed := task.Diff(before, updated)
	if task.AffectsCount(changed) {
		r.invalidateCounts("update", t.ID, changed)
	} else {
		r.logger.Debug("task update kept cached counts", Fields{"id": t.ID.String(), "changed": changed})
	}
	return updated, nil
}

// Delete removes the task with id and invalidates every cached count.
func (r *CachedTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.base.Delete(ctx, id); err != nil {
		r.logWriteError("delete", id, err)
		return err
	}
	r.itemWritten(ctx, id)
	r.invalidateCounts("delete", id, nil)
	return nil
}

func (r *CachedTaskRepository) invalidateCounts(op string, id uuid.UUID, changed []task.Field) {
	r.counts.InvalidateAll()
	fields := Fields{"op": op, "id": id.String(), "generation": r.counts.Generation()}
	if len(changed) > 0 {
		fields["changed"] = changed
	}
	r.logger.Debug("task counts invalidated", fields)
}

// itemWritten must run after the store write: readers that fetched before it
// either stored before the delete below or see the stripe move.
func (r *CachedTaskRepository) itemWritten(ctx context.Context, id uuid.UUID) {
	r.writes.stripe(id).Add(1)
	r.forgetItem(ctx, id)
}

func (r *CachedTaskRepository) forgetItem(ctx context.Context, id uuid.UUID) {
	if r.items == nil {
		return
	}
	if err := r.items.Delete(ctx, r.itemKey(id)); err != nil {
		r.logger.Warn("task item cache delete failed", Fields{"id": id.String(), "error": err.Error()})
	}
}

func (r *CachedTaskRepository) itemKey(id uuid.UUID) string {
	return r.keys.SerializeKey("GetByID", id)
}

func (r *CachedTaskRepository) logWriteError(op string, id uuid.UUID, err error) {
	if errors.Is(err, task.ErrNotFound) || isContextErr(err) {
		return
	}
	fields := Fields{"op": op, "error": err.Error()}
	if id != uuid.Nil {
		fields["id"] = id.String()
	}
	r.logger.Error("task write failed", fields)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

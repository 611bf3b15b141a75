// Package repositorycache provides a caching task repository.
//
// # Overview
//
// CachedTaskRepository wraps a TaskStore. Paginated list requests need a total
// row count next to the page contents, and counting is the expensive half.
// The decorator asks a cache.CountCache for the total, keyed by the filter
// fingerprint, and always reads the page itself from the store.
//
// Fingerprints are built from the filter fields that decide which rows match
// (status, title search, priority bounds). Sort order and pagination are left
// out, so every page and ordering of the same filter shares one cached total.
//
// # Basic Usage
//
//	counts, _ := cache.NewCountCache(cache.DefaultConfig())
//	items, _ := cache.NewCacheService(cache.DefaultItemConfig())
//	repo := repositorycache.New(store.NewTaskStore(db), counts, items,
//		repositorycache.WithLogger(logger))
//
//	page, err := repo.List(ctx, task.Filter{Status: &todo, Page: 2})
//
// # Invalidation
//
// Writes invalidate synchronously, before they return:
//
//   - Create and Delete always invalidate every cached count.
//   - Update compares the row the store replaced, read in the write's own
//     transaction, with the written one and invalidates only when a field in
//     task.CountFields changed. Edits to description, due date, sort order or
//     completion time keep the cached counts.
//   - Update and Delete also drop the record from the item cache. A GetByID
//     that was fetching while the write ran drops what it stored as well.
//
// Invalidation is a single generation bump in the count cache, so its cost
// does not depend on how many totals are cached.
//
// # Fresh Reads
//
// WithFreshCount marks a context so that List and Count bypass the count
// cache for that call:
//
//	page, err := repo.List(repositorycache.WithFreshCount(ctx), f)
//
// # Logging
//
// The repository logs through the Logger interface. Adapters for zap and
// logrus are in log/zaplog and log/logruslog; the default is NopLogger.
package repositorycache

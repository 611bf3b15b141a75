package repositorycache

import (
	"context"
)

type freshCountContextKey struct{}

// WithFreshCount marks ctx so that list and count calls made with it read the
// total straight from the store. The fresh value is not written to the count
// cache.
func WithFreshCount(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, freshCountContextKey{}, true)
}

func freshCountFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	fresh, _ := ctx.Value(freshCountContextKey{}).(bool)
	return fresh
}

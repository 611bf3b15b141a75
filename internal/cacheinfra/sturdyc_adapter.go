package cacheinfra

import (
	"context"
	"reflect"

	"github.com/viccon/sturdyc"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// noValue stands in for a nil fetch result. sturdyc type-checks every value
// it hands back, including the one returned next to an error, and rejects nil.
type noValue struct{}

// ItemCache is the sturdyc-backed read-through cache for single records.
// Concurrent fetches for the same key are deduplicated by sturdyc.
type ItemCache struct {
	client *sturdyc.Client[any]
}

// NewItemCache validates cfg and builds a sturdyc client from it.
func NewItemCache(cfg ItemConfig) (*ItemCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &ItemCache{client: client}, nil
}

// GetOrFetch returns the cached value for key or calls fetchFn and caches its
// result. fetchFn must have the shape func(context.Context) (T, error).
// Errors from fetchFn are returned and not cached.
func (s *ItemCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	call, err := adaptFetchFn(fetchFn)
	if err != nil {
		return nil, err
	}
	v, err := s.client.GetOrFetch(ctx, key, call)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(noValue); ok {
		return nil, nil
	}
	return v, nil
}

// Delete removes a single entry so the next read goes to the source.
func (s *ItemCache) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Size returns the number of cached items.
func (s *ItemCache) Size() int {
	return s.client.Size()
}

// adaptFetchFn turns any func(context.Context) (T, error) into the untyped
// fetch function the sturdyc client stores values for.
func adaptFetchFn(fetchFn any) (sturdyc.FetchFn[any], error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return func(ctx context.Context) (any, error) {
			return orNoValue(fn(ctx))
		}, nil
	}

	fnValue := reflect.ValueOf(fetchFn)
	fnType := fnValue.Type()
	switch {
	case fnType.Kind() != reflect.Func:
		return nil, &ConfigError{Field: "fetchFn", Message: "must be a function"}
	case fnType.NumIn() != 1 || fnType.NumOut() != 2:
		return nil, &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	case !fnType.In(0).Implements(contextType):
		return nil, &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	case !fnType.Out(1).Implements(errorType):
		return nil, &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}

	return func(ctx context.Context) (any, error) {
		out := fnValue.Call([]reflect.Value{reflect.ValueOf(ctx)})
		var err error
		if e := out[1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		return orNoValue(out[0].Interface(), err)
	}, nil
}

func orNoValue(v any, err error) (any, error) {
	if v == nil {
		return noValue{}, err
	}
	return v, err
}

package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs --no-cache, the "none" backend and
// runners built without a cache. Like the remote backends it fails once
// the caller's context is done.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return ctx.Err()
}

func (NullCache) Delete(ctx context.Context, key string) error {
	return ctx.Err()
}

func (NullCache) Close() error { return nil }

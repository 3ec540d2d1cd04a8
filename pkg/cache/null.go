package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. Every lookup misses, so each run resolves its
// grids from scratch. It backs --no-cache and is what a pipeline runner uses
// when given no cache.
//
// Like the other backends it honours ctx: once ctx is done, every method
// except Close returns ctx.Err().
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

func (*NullCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}

func (*NullCache) Delete(ctx context.Context, _ string) error { return ctx.Err() }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)

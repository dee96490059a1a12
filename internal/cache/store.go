package cache

import (
	"context"
	"time"
)

// Store is the shared keyed-TTL storage interface. The lookup cache and the
// rate-limit windows both run on it: lookup results use Set/Get with the
// configured TTL, fixed-window counters use IncrementWithTTL.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Pruner is implemented by stores that hold expired entries until something
// sweeps them. The maintenance cleaner prunes on a schedule; Redis expires
// keys on its own and does not implement this.
type Pruner interface {
	PruneExpired(ctx context.Context) (int, error)
}

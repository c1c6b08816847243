package driven

import (
	"context"
	"time"
)

// DistributedLock provides mutual exclusion across worker instances.
// One poll run per monitor config at a time, cluster-wide.
type DistributedLock interface {
	// Acquire attempts to acquire a lock. Returns true if acquired,
	// false if already held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases a lock. Only the holder can release.
	Release(ctx context.Context, key string) error

	// Extend extends the TTL of a held lock
	Extend(ctx context.Context, key string, ttl time.Duration) error

	// Ping checks if the lock backend is reachable
	Ping(ctx context.Context) error
}

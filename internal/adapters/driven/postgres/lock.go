package postgres

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock using PostgreSQL advisory locks.
//
// Limitations: advisory locks are connection-scoped, not TTL-based. A
// lost connection releases the lock; the TTL argument is ignored and
// Extend is a no-op. Use the Redis lock for multi-worker deployments;
// this is the fallback when Redis is not configured.
type AdvisoryLock struct {
	db *DB
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{db: db}
}

// hashLockKey maps a lock key onto the 64-bit space advisory locks use.
func hashLockKey(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte("docpipe:lock:" + key))
	return int64(h.Sum64())
}

// Acquire attempts to acquire a named advisory lock without blocking.
func (l *AdvisoryLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashLockKey(key)).Scan(&acquired)
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// Release releases a named advisory lock. Releasing a lock that is not
// held is not an error.
func (l *AdvisoryLock) Release(ctx context.Context, key string) error {
	var released bool
	return l.db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", hashLockKey(key)).Scan(&released)
}

// Extend is a no-op: advisory locks are held until released or the
// connection closes.
func (l *AdvisoryLock) Extend(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

// Ping checks if the database is reachable.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.Ping(ctx)
}

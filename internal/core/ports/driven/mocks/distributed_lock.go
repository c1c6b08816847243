package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MockDistributedLock is a mock implementation of DistributedLock for
// testing. In-memory lock state with optional behavior hooks.
type MockDistributedLock struct {
	mu    sync.Mutex
	locks map[string]time.Time

	AcquireFn func(key string, ttl time.Duration) (bool, error)
	ReleaseFn func(key string) error
}

// NewMockDistributedLock creates a new MockDistributedLock
func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{
		locks: make(map[string]time.Time),
	}
}

func (m *MockDistributedLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.AcquireFn != nil {
		return m.AcquireFn(key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if expiry, ok := m.locks[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockDistributedLock) Release(ctx context.Context, key string) error {
	if m.ReleaseFn != nil {
		return m.ReleaseFn(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locks[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.locks, key)
	return nil
}

func (m *MockDistributedLock) Extend(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locks[key]; !ok {
		return domain.ErrNotFound
	}
	m.locks[key] = time.Now().Add(ttl)
	return nil
}

func (m *MockDistributedLock) Ping(ctx context.Context) error {
	return nil
}

// Held reports whether a key is currently locked
func (m *MockDistributedLock) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.locks[key]
	return ok && time.Now().Before(expiry)
}

package mocks

import (
	"context"
	"sync"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MockContentStore is a mock implementation of ContentStore for testing
type MockContentStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string

	PutFn    func(bucket, object string, data []byte) (string, error)
	RemoveFn func(bucket, object string) error
}

// NewMockContentStore creates a new MockContentStore
func NewMockContentStore() *MockContentStore {
	return &MockContentStore{
		objects: make(map[string][]byte),
	}
}

func (m *MockContentStore) Put(ctx context.Context, bucket, object string, data []byte) (string, error) {
	if m.PutFn != nil {
		return m.PutFn(bucket, object, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := bucket + "/" + object
	m.objects[path] = data
	return path, nil
}

func (m *MockContentStore) Remove(ctx context.Context, bucket, object string) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(bucket, object)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := bucket + "/" + object
	if _, ok := m.objects[path]; !ok {
		return domain.ErrNotFound
	}
	delete(m.objects, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *MockContentStore) Ping(ctx context.Context) error {
	return nil
}

// Object returns a stored object's bytes, or nil when absent
func (m *MockContentStore) Object(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[path]
}

// Removed returns the paths removed so far
func (m *MockContentStore) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.removed))
	copy(out, m.removed)
	return out
}

// Len returns the number of stored objects
func (m *MockContentStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

package mocks

import (
	"context"
	"sync"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MockUnindexedStore is a mock implementation of UnindexedStore for testing.
// Resolve enforces the same pending-only conditional update as the real store.
type MockUnindexedStore struct {
	mu    sync.RWMutex
	items map[string]*domain.UnindexedItem

	SaveFn func(item *domain.UnindexedItem) error
}

// NewMockUnindexedStore creates a new MockUnindexedStore
func NewMockUnindexedStore() *MockUnindexedStore {
	return &MockUnindexedStore{
		items: make(map[string]*domain.UnindexedItem),
	}
}

func (m *MockUnindexedStore) Save(ctx context.Context, item *domain.UnindexedItem) error {
	if m.SaveFn != nil {
		return m.SaveFn(item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockUnindexedStore) Get(ctx context.Context, id string) (*domain.UnindexedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (m *MockUnindexedStore) List(ctx context.Context, bucketID string, status domain.UnindexedStatus, limit, offset int) ([]*domain.UnindexedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.UnindexedItem
	for _, item := range m.items {
		if bucketID != "" && item.BucketID != bucketID {
			continue
		}
		if status == "" || item.Status == status {
			items = append(items, item)
		}
	}
	if offset >= len(items) {
		return []*domain.UnindexedItem{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (m *MockUnindexedStore) CountPending(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, item := range m.items {
		if item.Status == domain.UnindexedStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *MockUnindexedStore) Resolve(ctx context.Context, item *domain.UnindexedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if existing.Status != domain.UnindexedStatusPending {
		return domain.ErrItemResolved
	}
	m.items[item.ID] = item
	return nil
}

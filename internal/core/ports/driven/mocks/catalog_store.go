package mocks

import (
	"context"
	"sync"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MockBucketStore is a mock implementation of BucketStore for testing
type MockBucketStore struct {
	mu      sync.RWMutex
	buckets map[string]*domain.Bucket

	// DeleteFn overrides Delete, e.g. to simulate in-use buckets
	DeleteFn func(id string) error
}

// NewMockBucketStore creates a new MockBucketStore
func NewMockBucketStore() *MockBucketStore {
	return &MockBucketStore{
		buckets: make(map[string]*domain.Bucket),
	}
}

func (m *MockBucketStore) Save(ctx context.Context, bucket *domain.Bucket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket.ID] = bucket
	return nil
}

func (m *MockBucketStore) Get(ctx context.Context, id string) (*domain.Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.buckets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bucket, nil
}

func (m *MockBucketStore) List(ctx context.Context) ([]*domain.Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buckets := make([]*domain.Bucket, 0, len(m.buckets))
	for _, b := range m.buckets {
		buckets = append(buckets, b)
	}
	return buckets, nil
}

func (m *MockBucketStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.buckets, id)
	return nil
}

// MockDocumentTypeStore is a mock implementation of DocumentTypeStore for testing
type MockDocumentTypeStore struct {
	mu    sync.RWMutex
	types map[string]*domain.DocumentType

	DeleteFn func(id string) error
}

// NewMockDocumentTypeStore creates a new MockDocumentTypeStore
func NewMockDocumentTypeStore() *MockDocumentTypeStore {
	return &MockDocumentTypeStore{
		types: make(map[string]*domain.DocumentType),
	}
}

func (m *MockDocumentTypeStore) Save(ctx context.Context, dt *domain.DocumentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[dt.ID] = dt
	return nil
}

func (m *MockDocumentTypeStore) Get(ctx context.Context, id string) (*domain.DocumentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dt, ok := m.types[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return dt, nil
}

func (m *MockDocumentTypeStore) List(ctx context.Context) ([]*domain.DocumentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]*domain.DocumentType, 0, len(m.types))
	for _, dt := range m.types {
		types = append(types, dt)
	}
	return types, nil
}

func (m *MockDocumentTypeStore) ListActive(ctx context.Context) ([]*domain.DocumentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]*domain.DocumentType, 0, len(m.types))
	for _, dt := range m.types {
		if dt.Active {
			types = append(types, dt)
		}
	}
	return types, nil
}

func (m *MockDocumentTypeStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.types[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.types, id)
	return nil
}

// MockPatternStore is a mock implementation of PatternStore for testing
type MockPatternStore struct {
	mu       sync.RWMutex
	patterns map[string]*domain.BarcodePattern

	ListActiveFn func() ([]*domain.BarcodePattern, error)
}

// NewMockPatternStore creates a new MockPatternStore
func NewMockPatternStore() *MockPatternStore {
	return &MockPatternStore{
		patterns: make(map[string]*domain.BarcodePattern),
	}
}

func (m *MockPatternStore) Save(ctx context.Context, p *domain.BarcodePattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[p.ID] = p
	return nil
}

func (m *MockPatternStore) Get(ctx context.Context, id string) (*domain.BarcodePattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.patterns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *MockPatternStore) List(ctx context.Context) ([]*domain.BarcodePattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	patterns := make([]*domain.BarcodePattern, 0, len(m.patterns))
	for _, p := range m.patterns {
		patterns = append(patterns, p)
	}
	domain.SortPatterns(patterns)
	return patterns, nil
}

func (m *MockPatternStore) ListActive(ctx context.Context) ([]*domain.BarcodePattern, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	patterns := make([]*domain.BarcodePattern, 0, len(m.patterns))
	for _, p := range m.patterns {
		if p.Active {
			patterns = append(patterns, p)
		}
	}
	domain.SortPatterns(patterns)
	return patterns, nil
}

func (m *MockPatternStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patterns[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.patterns, id)
	return nil
}

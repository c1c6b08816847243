package mocks

import (
	"context"
	"sync"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	byBucket  map[string][]*domain.Document

	// SaveFn overrides Save, e.g. to simulate catalog insert failures
	SaveFn func(doc *domain.Document) error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
		byBucket:  make(map[string][]*domain.Document),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	if m.SaveFn != nil {
		return m.SaveFn(doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for i, d := range m.byBucket[doc.BucketID] {
		if d.ID == doc.ID {
			m.byBucket[doc.BucketID][i] = doc
			found = true
			break
		}
	}
	if !found {
		m.byBucket[doc.BucketID] = append(m.byBucket[doc.BucketID], doc)
	}
	m.documents[doc.ID] = doc
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) List(ctx context.Context, bucketID string, limit, offset int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.byBucket[bucketID]
	if offset >= len(docs) {
		return []*domain.Document{}, nil
	}
	end := offset + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end], nil
}

func (m *MockDocumentStore) ListByDetailLine(ctx context.Context, detailLineID string) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []*domain.Document
	for _, d := range m.documents {
		if d.DetailLineID == detailLineID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (m *MockDocumentStore) Count(ctx context.Context, bucketID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byBucket[bucketID]), nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	docs := m.byBucket[doc.BucketID]
	for i, d := range docs {
		if d.ID == id {
			m.byBucket[doc.BucketID] = append(docs[:i], docs[i+1:]...)
			break
		}
	}
	delete(m.documents, id)
	return nil
}

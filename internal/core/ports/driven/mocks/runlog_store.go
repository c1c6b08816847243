package mocks

import (
	"context"
	"sync"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MockRunLogStore is a mock implementation of RunLogStore for testing
type MockRunLogStore struct {
	mu   sync.RWMutex
	logs []*domain.PollRunLog

	SaveFn func(log *domain.PollRunLog) error
}

// NewMockRunLogStore creates a new MockRunLogStore
func NewMockRunLogStore() *MockRunLogStore {
	return &MockRunLogStore{}
}

func (m *MockRunLogStore) Save(ctx context.Context, log *domain.PollRunLog) error {
	if m.SaveFn != nil {
		return m.SaveFn(log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Newest first
	m.logs = append([]*domain.PollRunLog{log}, m.logs...)
	return nil
}

func (m *MockRunLogStore) List(ctx context.Context, configID string, limit, offset int) ([]*domain.PollRunLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.PollRunLog
	for _, l := range m.logs {
		if configID == "" || l.ConfigID == configID {
			logs = append(logs, l)
		}
	}
	if offset >= len(logs) {
		return []*domain.PollRunLog{}, nil
	}
	end := offset + limit
	if end > len(logs) {
		end = len(logs)
	}
	return logs[offset:end], nil
}

func (m *MockRunLogStore) Latest(ctx context.Context, configID string) (*domain.PollRunLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.logs {
		if l.ConfigID == configID {
			return l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockRunLogStore) Prune(ctx context.Context, keep int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perConfig := make(map[string]int)
	var kept []*domain.PollRunLog
	removed := 0
	for _, l := range m.logs {
		if perConfig[l.ConfigID] < keep {
			kept = append(kept, l)
			perConfig[l.ConfigID]++
		} else {
			removed++
		}
	}
	m.logs = kept
	return removed, nil
}

// Logs returns all saved run logs, newest first
func (m *MockRunLogStore) Logs() []*domain.PollRunLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]*domain.PollRunLog, len(m.logs))
	copy(logs, m.logs)
	return logs
}

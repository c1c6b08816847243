package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MockMonitorStore is a mock implementation of MonitorStore for testing
type MockMonitorStore struct {
	mu      sync.RWMutex
	configs map[string]*domain.MonitorConfig

	// Custom behavior hooks (optional)
	SaveFn          func(cfg *domain.MonitorConfig) error
	AdvanceCursorFn func(id string, lastCheck time.Time) error
}

// NewMockMonitorStore creates a new MockMonitorStore
func NewMockMonitorStore() *MockMonitorStore {
	return &MockMonitorStore{
		configs: make(map[string]*domain.MonitorConfig),
	}
}

func (m *MockMonitorStore) Save(ctx context.Context, cfg *domain.MonitorConfig) error {
	if m.SaveFn != nil {
		return m.SaveFn(cfg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.ID] = cfg
	return nil
}

func (m *MockMonitorStore) Get(ctx context.Context, id string) (*domain.MonitorConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

func (m *MockMonitorStore) List(ctx context.Context) ([]*domain.MonitorConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	configs := make([]*domain.MonitorConfig, 0, len(m.configs))
	for _, cfg := range m.configs {
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (m *MockMonitorStore) ListEnabled(ctx context.Context) ([]*domain.MonitorConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	configs := make([]*domain.MonitorConfig, 0, len(m.configs))
	for _, cfg := range m.configs {
		if cfg.Enabled {
			configs = append(configs, cfg)
		}
	}
	return configs, nil
}

func (m *MockMonitorStore) AdvanceCursor(ctx context.Context, id string, lastCheck time.Time) error {
	if m.AdvanceCursorFn != nil {
		return m.AdvanceCursorFn(id, lastCheck)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	if !ok {
		return domain.ErrNotFound
	}
	t := lastCheck
	cfg.LastCheck = &t
	return nil
}

func (m *MockMonitorStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.configs, id)
	return nil
}

package driven

import (
	"context"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MonitorStore handles monitor config persistence (PostgreSQL)
type MonitorStore interface {
	// Save creates or updates a monitor config
	Save(ctx context.Context, cfg *domain.MonitorConfig) error

	// Get retrieves a monitor config by ID
	Get(ctx context.Context, id string) (*domain.MonitorConfig, error)

	// List retrieves all monitor configs
	List(ctx context.Context) ([]*domain.MonitorConfig, error)

	// ListEnabled retrieves configs eligible for scheduling
	ListEnabled(ctx context.Context) ([]*domain.MonitorConfig, error)

	// AdvanceCursor persists the lastCheck watermark for a config.
	// Called unconditionally after every run, including partial ones.
	AdvanceCursor(ctx context.Context, id string, lastCheck time.Time) error

	// Delete deletes a monitor config
	Delete(ctx context.Context, id string) error
}

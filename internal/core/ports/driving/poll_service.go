package driving

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// PollService drives ingestion runs against monitored mailboxes
type PollService interface {
	// Poll executes one ingestion run for a config. Returns
	// domain.ErrPollInProgress when another worker holds the run lock.
	Poll(ctx context.Context, configID string) (*domain.PollResult, error)

	// TriggerPoll enqueues an on-demand run for a config
	TriggerPoll(ctx context.Context, configID string) (*domain.Task, error)

	// ListRunLogs retrieves run history, newest first. Empty configID
	// spans all configs.
	ListRunLogs(ctx context.Context, configID string, limit, offset int) ([]*domain.PollRunLog, error)

	// LatestRun retrieves the most recent run for a config
	LatestRun(ctx context.Context, configID string) (*domain.PollRunLog, error)
}

// MonitorService manages mailbox monitor configs
type MonitorService interface {
	// CreateConfig creates a monitor config
	CreateConfig(ctx context.Context, cfg *domain.MonitorConfig) error

	// GetConfig retrieves a config by ID
	GetConfig(ctx context.Context, id string) (*domain.MonitorConfig, error)

	// ListConfigs retrieves all configs
	ListConfigs(ctx context.Context) ([]*domain.MonitorConfig, error)

	// UpdateConfig updates a config
	UpdateConfig(ctx context.Context, cfg *domain.MonitorConfig) error

	// DeleteConfig deletes a config
	DeleteConfig(ctx context.Context, id string) error
}

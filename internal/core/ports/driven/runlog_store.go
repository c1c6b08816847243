package driven

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// RunLogStore handles poll run history (PostgreSQL)
type RunLogStore interface {
	// Save records a completed run
	Save(ctx context.Context, log *domain.PollRunLog) error

	// List retrieves run logs for a config, newest first.
	// An empty configID lists runs across all configs.
	List(ctx context.Context, configID string, limit, offset int) ([]*domain.PollRunLog, error)

	// Latest retrieves the most recent run for a config
	Latest(ctx context.Context, configID string) (*domain.PollRunLog, error)

	// Prune removes logs beyond the retention horizon, keeping the most
	// recent keep entries per config
	Prune(ctx context.Context, keep int) (int, error)
}

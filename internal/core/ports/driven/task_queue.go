package driven

import (
	"context"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// TaskQueue handles poll task distribution to workers (Redis or PostgreSQL)
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(ctx context.Context, task *domain.Task) error

	// Dequeue retrieves the next available task, blocking up to timeout.
	// Returns nil when the timeout elapses with no task.
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error)

	// Ack marks a task as successfully completed
	Ack(ctx context.Context, taskID string) error

	// Nack marks a task as failed; it is retried while attempts remain
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// Stats returns queue statistics
	Stats(ctx context.Context) (*QueueStats, error)

	// Ping checks queue health
	Ping(ctx context.Context) error

	// Close releases queue resources
	Close() error
}

// QueueStats provides queue observability
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

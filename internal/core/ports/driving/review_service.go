package driving

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// ReviewService drives the human review queue for unclassified documents
type ReviewService interface {
	// ListQueue retrieves review items filtered by bucket and status,
	// newest first. Empty filters are skipped.
	ListQueue(ctx context.Context, bucketID string, status domain.UnindexedStatus, limit, offset int) ([]*domain.UnindexedItem, error)

	// GetItem retrieves a review item by ID
	GetItem(ctx context.Context, id string) (*domain.UnindexedItem, error)

	// PendingCount returns the number of items awaiting review
	PendingCount(ctx context.Context) (int, error)

	// Resolve indexes a pending item with reviewer-supplied metadata,
	// filing the document into its bucket. Returns domain.ErrItemResolved
	// when the item was resolved concurrently.
	Resolve(ctx context.Context, id string, res domain.Resolution, resolvedBy string) (*domain.Document, error)

	// Discard marks a pending item as not worth indexing
	Discard(ctx context.Context, id string, resolvedBy string) error
}

package driven

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// UnindexedStore handles the human-review queue (PostgreSQL)
type UnindexedStore interface {
	// Save creates an unindexed item
	Save(ctx context.Context, item *domain.UnindexedItem) error

	// Get retrieves an item by ID
	Get(ctx context.Context, id string) (*domain.UnindexedItem, error)

	// List retrieves items filtered by bucket and status, newest first.
	// An empty bucketID or status leaves that filter off.
	List(ctx context.Context, bucketID string, status domain.UnindexedStatus, limit, offset int) ([]*domain.UnindexedItem, error)

	// CountPending returns the number of items awaiting review
	CountPending(ctx context.Context) (int, error)

	// Resolve transitions a pending item to indexed or discarded with a
	// conditional update on status. Returns domain.ErrItemResolved when
	// the item is no longer pending, so concurrent reviewers cannot both
	// win.
	Resolve(ctx context.Context, item *domain.UnindexedItem) error
}

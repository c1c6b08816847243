package driven

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// DocumentStore handles catalog row persistence (PostgreSQL)
type DocumentStore interface {
	// Save creates or updates a document row
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves documents for a bucket, newest first
	List(ctx context.Context, bucketID string, limit, offset int) ([]*domain.Document, error)

	// ListByDetailLine retrieves documents attached to a detail line
	ListByDetailLine(ctx context.Context, detailLineID string) ([]*domain.Document, error)

	// Count returns the number of documents in a bucket
	Count(ctx context.Context, bucketID string) (int, error)

	// Delete deletes a document row
	Delete(ctx context.Context, id string) error
}

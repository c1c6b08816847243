package driven

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// BucketStore handles content bucket persistence (PostgreSQL)
type BucketStore interface {
	// Save creates or updates a bucket
	Save(ctx context.Context, bucket *domain.Bucket) error

	// Get retrieves a bucket by ID
	Get(ctx context.Context, id string) (*domain.Bucket, error)

	// List retrieves all buckets
	List(ctx context.Context) ([]*domain.Bucket, error)

	// Delete deletes a bucket. Implementations must return
	// domain.ErrBucketInUse when documents or patterns reference it.
	Delete(ctx context.Context, id string) error
}

// DocumentTypeStore handles document type persistence (PostgreSQL)
type DocumentTypeStore interface {
	// Save creates or updates a document type
	Save(ctx context.Context, dt *domain.DocumentType) error

	// Get retrieves a document type by ID
	Get(ctx context.Context, id string) (*domain.DocumentType, error)

	// List retrieves all document types
	List(ctx context.Context) ([]*domain.DocumentType, error)

	// ListActive retrieves the active types the classifier matches against
	ListActive(ctx context.Context) ([]*domain.DocumentType, error)

	// Delete deletes a document type. Implementations must return
	// domain.ErrDocumentTypeInUse when documents reference it.
	Delete(ctx context.Context, id string) error
}

// PatternStore handles barcode pattern persistence (PostgreSQL)
type PatternStore interface {
	// Save creates or updates a pattern
	Save(ctx context.Context, p *domain.BarcodePattern) error

	// Get retrieves a pattern by ID
	Get(ctx context.Context, id string) (*domain.BarcodePattern, error)

	// List retrieves all patterns
	List(ctx context.Context) ([]*domain.BarcodePattern, error)

	// ListActive retrieves active patterns in ascending priority order
	ListActive(ctx context.Context) ([]*domain.BarcodePattern, error)

	// Delete deletes a pattern
	Delete(ctx context.Context, id string) error
}

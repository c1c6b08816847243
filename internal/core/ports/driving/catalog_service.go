package driving

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// CatalogService manages buckets, document types, barcode patterns and
// the document catalog
type CatalogService interface {
	// CreateBucket creates a bucket
	CreateBucket(ctx context.Context, bucket *domain.Bucket) error

	// GetBucket retrieves a bucket by ID
	GetBucket(ctx context.Context, id string) (*domain.Bucket, error)

	// ListBuckets retrieves all buckets
	ListBuckets(ctx context.Context) ([]*domain.Bucket, error)

	// UpdateBucket updates a bucket
	UpdateBucket(ctx context.Context, bucket *domain.Bucket) error

	// DeleteBucket deletes a bucket unless documents or patterns use it
	DeleteBucket(ctx context.Context, id string) error

	// CreateDocumentType creates a document type
	CreateDocumentType(ctx context.Context, dt *domain.DocumentType) error

	// ListDocumentTypes retrieves all document types
	ListDocumentTypes(ctx context.Context) ([]*domain.DocumentType, error)

	// UpdateDocumentType updates a document type
	UpdateDocumentType(ctx context.Context, dt *domain.DocumentType) error

	// DeleteDocumentType deletes a document type unless documents use it
	DeleteDocumentType(ctx context.Context, id string) error

	// CreatePattern creates a barcode pattern
	CreatePattern(ctx context.Context, p *domain.BarcodePattern) error

	// ListPatterns retrieves all patterns
	ListPatterns(ctx context.Context) ([]*domain.BarcodePattern, error)

	// UpdatePattern updates a pattern
	UpdatePattern(ctx context.Context, p *domain.BarcodePattern) error

	// DeletePattern deletes a pattern
	DeletePattern(ctx context.Context, id string) error

	// ListDocuments retrieves catalog entries for a bucket, newest first
	ListDocuments(ctx context.Context, bucketID string, limit, offset int) ([]*domain.Document, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
}

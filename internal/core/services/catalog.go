package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/core/ports/driving"
)

// Ensure CatalogService implements the driving interface
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService manages buckets, document types, barcode patterns and
// read access to the document catalog.
type CatalogService struct {
	bucketStore   driven.BucketStore
	typeStore     driven.DocumentTypeStore
	patternStore  driven.PatternStore
	documentStore driven.DocumentStore
	logger        *slog.Logger
}

// CatalogServiceConfig holds dependencies for CatalogService.
type CatalogServiceConfig struct {
	BucketStore   driven.BucketStore
	TypeStore     driven.DocumentTypeStore
	PatternStore  driven.PatternStore
	DocumentStore driven.DocumentStore
	Logger        *slog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		bucketStore:   cfg.BucketStore,
		typeStore:     cfg.TypeStore,
		patternStore:  cfg.PatternStore,
		documentStore: cfg.DocumentStore,
		logger:        logger,
	}
}

// CreateBucket creates a bucket
func (s *CatalogService) CreateBucket(ctx context.Context, bucket *domain.Bucket) error {
	if bucket.Name == "" {
		return fmt.Errorf("%w: bucket name required", domain.ErrInvalidInput)
	}
	if bucket.ID == "" {
		bucket.ID = domain.GenerateID()
	}
	now := time.Now()
	bucket.CreatedAt = now
	bucket.UpdatedAt = now
	if err := s.bucketStore.Save(ctx, bucket); err != nil {
		return fmt.Errorf("failed to save bucket: %w", err)
	}
	s.logger.Info("bucket created", "bucket_id", bucket.ID, "name", bucket.Name)
	return nil
}

// GetBucket retrieves a bucket by ID
func (s *CatalogService) GetBucket(ctx context.Context, id string) (*domain.Bucket, error) {
	return s.bucketStore.Get(ctx, id)
}

// ListBuckets retrieves all buckets
func (s *CatalogService) ListBuckets(ctx context.Context) ([]*domain.Bucket, error) {
	return s.bucketStore.List(ctx)
}

// UpdateBucket updates a bucket
func (s *CatalogService) UpdateBucket(ctx context.Context, bucket *domain.Bucket) error {
	existing, err := s.bucketStore.Get(ctx, bucket.ID)
	if err != nil {
		return err
	}
	if bucket.Name == "" {
		return fmt.Errorf("%w: bucket name required", domain.ErrInvalidInput)
	}
	bucket.CreatedAt = existing.CreatedAt
	bucket.UpdatedAt = time.Now()
	return s.bucketStore.Save(ctx, bucket)
}

// DeleteBucket deletes a bucket unless documents or patterns use it
func (s *CatalogService) DeleteBucket(ctx context.Context, id string) error {
	if err := s.bucketStore.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("bucket deleted", "bucket_id", id)
	return nil
}

// CreateDocumentType creates a document type
func (s *CatalogService) CreateDocumentType(ctx context.Context, dt *domain.DocumentType) error {
	if dt.Name == "" {
		return fmt.Errorf("%w: document type name required", domain.ErrInvalidInput)
	}
	if dt.ID == "" {
		dt.ID = domain.GenerateID()
	}
	now := time.Now()
	dt.CreatedAt = now
	dt.UpdatedAt = now
	if err := s.typeStore.Save(ctx, dt); err != nil {
		return fmt.Errorf("failed to save document type: %w", err)
	}
	s.logger.Info("document type created", "type_id", dt.ID, "name", dt.Name)
	return nil
}

// ListDocumentTypes retrieves all document types
func (s *CatalogService) ListDocumentTypes(ctx context.Context) ([]*domain.DocumentType, error) {
	return s.typeStore.List(ctx)
}

// UpdateDocumentType updates a document type
func (s *CatalogService) UpdateDocumentType(ctx context.Context, dt *domain.DocumentType) error {
	existing, err := s.typeStore.Get(ctx, dt.ID)
	if err != nil {
		return err
	}
	if dt.Name == "" {
		return fmt.Errorf("%w: document type name required", domain.ErrInvalidInput)
	}
	dt.CreatedAt = existing.CreatedAt
	dt.UpdatedAt = time.Now()
	return s.typeStore.Save(ctx, dt)
}

// DeleteDocumentType deletes a document type unless documents use it
func (s *CatalogService) DeleteDocumentType(ctx context.Context, id string) error {
	if err := s.typeStore.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("document type deleted", "type_id", id)
	return nil
}

// CreatePattern creates a barcode pattern
func (s *CatalogService) CreatePattern(ctx context.Context, p *domain.BarcodePattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = domain.GenerateID()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.patternStore.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save pattern: %w", err)
	}
	s.logger.Info("pattern created", "pattern_id", p.ID, "template", p.Template, "priority", p.Priority)
	return nil
}

// ListPatterns retrieves all patterns in priority order
func (s *CatalogService) ListPatterns(ctx context.Context) ([]*domain.BarcodePattern, error) {
	return s.patternStore.List(ctx)
}

// UpdatePattern updates a pattern
func (s *CatalogService) UpdatePattern(ctx context.Context, p *domain.BarcodePattern) error {
	existing, err := s.patternStore.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	return s.patternStore.Save(ctx, p)
}

// DeletePattern deletes a pattern
func (s *CatalogService) DeletePattern(ctx context.Context, id string) error {
	if err := s.patternStore.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("pattern deleted", "pattern_id", id)
	return nil
}

// ListDocuments retrieves catalog entries for a bucket, newest first
func (s *CatalogService) ListDocuments(ctx context.Context, bucketID string, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.documentStore.List(ctx, bucketID, limit, offset)
}

// GetDocument retrieves a document by ID
func (s *CatalogService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.documentStore.Get(ctx, id)
}

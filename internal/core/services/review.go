package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/core/ports/driving"
)

// Ensure ReviewService implements the driving interface
var _ driving.ReviewService = (*ReviewService)(nil)

// ReviewService works the human review queue: listing pending items and
// resolving them to indexed or discarded.
type ReviewService struct {
	unindexedStore driven.UnindexedStore
	documentStore  driven.DocumentStore
	typeStore      driven.DocumentTypeStore
	logger         *slog.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(unindexedStore driven.UnindexedStore, documentStore driven.DocumentStore, typeStore driven.DocumentTypeStore, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{
		unindexedStore: unindexedStore,
		documentStore:  documentStore,
		typeStore:      typeStore,
		logger:         logger,
	}
}

// ListQueue retrieves review items filtered by bucket and status, newest
// first. An empty bucketID skips the bucket filter.
func (s *ReviewService) ListQueue(ctx context.Context, bucketID string, status domain.UnindexedStatus, limit, offset int) ([]*domain.UnindexedItem, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.unindexedStore.List(ctx, bucketID, status, limit, offset)
}

// GetItem retrieves a review item by ID
func (s *ReviewService) GetItem(ctx context.Context, id string) (*domain.UnindexedItem, error) {
	return s.unindexedStore.Get(ctx, id)
}

// PendingCount returns the number of items awaiting review
func (s *ReviewService) PendingCount(ctx context.Context) (int, error) {
	return s.unindexedStore.CountPending(ctx)
}

// Resolve indexes a pending item with operator-supplied metadata. The
// catalog row reuses the item's stored bytes; nothing is re-uploaded.
// The item transition is a conditional update, so when two operators
// race only the first one wins and the loser gets ErrItemResolved.
func (s *ReviewService) Resolve(ctx context.Context, id string, res domain.Resolution, resolvedBy string) (*domain.Document, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}

	item, err := s.unindexedStore.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if !item.IsPending() {
		return nil, domain.ErrItemResolved
	}

	dt, err := s.typeStore.Get(ctx, res.DocumentTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown document type", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get document type: %w", err)
	}

	now := time.Now()
	doc := &domain.Document{
		ID:             domain.GenerateID(),
		BucketID:       item.BucketID,
		DocumentType:   dt.Name,
		DocumentTypeID: dt.ID,
		DetailLineID:   res.DetailLineID,
		BillNumber:     res.BillNumber,
		StoragePath:    item.StoragePath,
		FileName:       item.FileName,
		Size:           item.Size,
		PageCount:      item.PageCount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.documentStore.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	resolved := *item
	resolved.Status = domain.UnindexedStatusIndexed
	resolved.DetailLineID = res.DetailLineID
	resolved.DocumentTypeID = dt.ID
	resolved.BillNumber = res.BillNumber
	resolved.ResolvedBy = resolvedBy
	resolved.ResolvedAt = &now
	resolved.UpdatedAt = now

	if err := s.unindexedStore.Resolve(ctx, &resolved); err != nil {
		// A concurrent reviewer won; drop our duplicate catalog row.
		if delErr := s.documentStore.Delete(ctx, doc.ID); delErr != nil {
			s.logger.Warn("failed to remove duplicate document after lost resolve race",
				"document_id", doc.ID, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("review item indexed",
		"item_id", id,
		"document_id", doc.ID,
		"detail_line_id", res.DetailLineID,
		"resolved_by", resolvedBy)

	return doc, nil
}

// Discard marks a pending item as not worth indexing. The stored bytes
// are retained for audit.
func (s *ReviewService) Discard(ctx context.Context, id string, resolvedBy string) error {
	item, err := s.unindexedStore.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}
	if !item.IsPending() {
		return domain.ErrItemResolved
	}

	now := time.Now()
	resolved := *item
	resolved.Status = domain.UnindexedStatusDiscarded
	resolved.ResolvedBy = resolvedBy
	resolved.ResolvedAt = &now
	resolved.UpdatedAt = now

	if err := s.unindexedStore.Resolve(ctx, &resolved); err != nil {
		return err
	}

	s.logger.Info("review item discarded", "item_id", id, "resolved_by", resolvedBy)
	return nil
}

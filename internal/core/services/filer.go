package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Filer commits a classified attachment to its destination: bytes into
// the content store first, then the catalog row. If the catalog insert
// fails the stored blob is removed so the two never disagree.
type Filer struct {
	contentStore   driven.ContentStore
	documentStore  driven.DocumentStore
	unindexedStore driven.UnindexedStore
	logger         *slog.Logger
}

// NewFiler creates a new Filer
func NewFiler(contentStore driven.ContentStore, documentStore driven.DocumentStore, unindexedStore driven.UnindexedStore, logger *slog.Logger) *Filer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filer{
		contentStore:   contentStore,
		documentStore:  documentStore,
		unindexedStore: unindexedStore,
		logger:         logger,
	}
}

// File stores the attachment bytes and creates the catalog entry.
func (f *Filer) File(ctx context.Context, bucket *domain.Bucket, cls *domain.Classification, att *domain.PDFAttachment) (*domain.Document, error) {
	id := domain.GenerateID()
	object := fmt.Sprintf("%s/%s/%s_%s", cls.DocumentType, cls.DetailLineID, id, att.Filename)

	storagePath, err := f.contentStore.Put(ctx, bucket.StorageName(), object, att.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	now := time.Now()
	doc := &domain.Document{
		ID:             id,
		BucketID:       bucket.ID,
		DocumentType:   cls.DocumentType,
		DocumentTypeID: cls.DocumentTypeID,
		DetailLineID:   cls.DetailLineID,
		BillNumber:     cls.BillNumber,
		StoragePath:    storagePath,
		FileName:       att.Filename,
		Size:           att.Size(),
		PageCount:      att.PageCount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := f.documentStore.Save(ctx, doc); err != nil {
		// Compensate the orphaned blob; a stale object is worse than a
		// lost upload because nothing will ever point at it.
		if rmErr := f.contentStore.Remove(ctx, bucket.StorageName(), object); rmErr != nil {
			f.logger.Warn("failed to remove orphaned object",
				"bucket", bucket.StorageName(), "object", object, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	f.logger.Info("document filed",
		"document_id", doc.ID,
		"bucket_id", bucket.ID,
		"document_type", doc.DocumentType,
		"detail_line_id", doc.DetailLineID,
		"pages", doc.PageCount)

	return doc, nil
}

// Quarantine stores the attachment bytes in the bucket's review area and
// creates a pending review item. detected carries every barcode found on
// the attachment, which the review UI shows to the operator.
func (f *Filer) Quarantine(ctx context.Context, bucket *domain.Bucket, att *domain.PDFAttachment, detected []string, sourceType domain.SourceType, sourceConfigID string) (*domain.UnindexedItem, error) {
	id := domain.GenerateID()
	object := fmt.Sprintf("unindexed/%s_%s", id, att.Filename)

	storagePath, err := f.contentStore.Put(ctx, bucket.StorageName(), object, att.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	item := domain.NewUnindexedItem(bucket.ID, storagePath, att.Filename, att.Size(), att.PageCount, detected, sourceType, sourceConfigID)
	item.ID = id

	if err := f.unindexedStore.Save(ctx, item); err != nil {
		if rmErr := f.contentStore.Remove(ctx, bucket.StorageName(), object); rmErr != nil {
			f.logger.Warn("failed to remove orphaned object",
				"bucket", bucket.StorageName(), "object", object, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save unindexed item: %w", err)
	}

	f.logger.Info("attachment queued for review",
		"item_id", item.ID,
		"bucket_id", bucket.ID,
		"file_name", att.Filename,
		"barcodes", len(detected))

	return item, nil
}

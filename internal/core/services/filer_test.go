package services

import (
	"context"
	"errors"
	"testing"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven/mocks"
)

func setupFiler(t *testing.T) (*Filer, *mocks.MockContentStore, *mocks.MockDocumentStore, *mocks.MockUnindexedStore) {
	t.Helper()
	content := mocks.NewMockContentStore()
	docs := mocks.NewMockDocumentStore()
	unindexed := mocks.NewMockUnindexedStore()
	return NewFiler(content, docs, unindexed, nil), content, docs, unindexed
}

func TestFiler_File(t *testing.T) {
	filer, content, docs, _ := setupFiler(t)
	ctx := context.Background()

	bucket := &domain.Bucket{ID: "b1", Name: "Freight Docs", Active: true}
	cls := &domain.Classification{
		DocumentType:   "POD",
		DocumentTypeID: "dt-pod",
		DetailLineID:   "55501",
		PatternID:      "p1",
		Barcode:        "POD-55501",
	}
	att := &domain.PDFAttachment{Filename: "scan.pdf", Data: []byte("%PDF-1.4"), PageCount: 3}

	doc, err := filer.File(ctx, bucket, cls, att)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.BucketID != "b1" || doc.DocumentType != "POD" || doc.DetailLineID != "55501" {
		t.Errorf("wrong catalog row: %+v", doc)
	}
	if doc.PageCount != 3 || doc.Size != int64(len(att.Data)) {
		t.Errorf("size/pages not recorded: %+v", doc)
	}
	if doc.StoragePath == "" {
		t.Error("expected storage path")
	}
	if content.Len() != 1 {
		t.Errorf("expected 1 stored object, got %d", content.Len())
	}
	if _, err := docs.Get(ctx, doc.ID); err != nil {
		t.Errorf("catalog row missing: %v", err)
	}
}

func TestFiler_File_CatalogFailureRemovesBlob(t *testing.T) {
	filer, content, docs, _ := setupFiler(t)
	ctx := context.Background()

	docs.SaveFn = func(doc *domain.Document) error {
		return errors.New("insert failed")
	}

	bucket := &domain.Bucket{ID: "b1", Name: "freight"}
	cls := &domain.Classification{DocumentType: "POD", DetailLineID: "1"}
	att := &domain.PDFAttachment{Filename: "scan.pdf", Data: []byte("x"), PageCount: 1}

	if _, err := filer.File(ctx, bucket, cls, att); err == nil {
		t.Fatal("expected error")
	}
	if content.Len() != 0 {
		t.Errorf("orphaned blob left behind: %d objects", content.Len())
	}
	if len(content.Removed()) != 1 {
		t.Errorf("expected compensating remove, got %v", content.Removed())
	}
}

func TestFiler_Quarantine(t *testing.T) {
	filer, content, _, unindexed := setupFiler(t)
	ctx := context.Background()

	bucket := &domain.Bucket{ID: "b1", Name: "freight"}
	att := &domain.PDFAttachment{Filename: "mystery.pdf", Data: []byte("%PDF"), PageCount: 2}

	item, err := filer.Quarantine(ctx, bucket, att, []string{"UNKNOWN-1"}, domain.SourceTypeEmail, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !item.IsPending() {
		t.Errorf("expected pending item, got %s", item.Status)
	}
	if len(item.DetectedBarcodes) != 1 || item.DetectedBarcodes[0] != "UNKNOWN-1" {
		t.Errorf("barcodes not recorded: %v", item.DetectedBarcodes)
	}
	if item.SourceConfigID != "cfg-1" || item.SourceType != domain.SourceTypeEmail {
		t.Errorf("source not recorded: %+v", item)
	}
	if content.Len() != 1 {
		t.Errorf("expected stored object, got %d", content.Len())
	}
	if _, err := unindexed.Get(ctx, item.ID); err != nil {
		t.Errorf("review item missing: %v", err)
	}
}

func TestFiler_Quarantine_SaveFailureRemovesBlob(t *testing.T) {
	filer, content, _, unindexed := setupFiler(t)
	ctx := context.Background()

	unindexed.SaveFn = func(item *domain.UnindexedItem) error {
		return errors.New("insert failed")
	}

	bucket := &domain.Bucket{ID: "b1", Name: "freight"}
	att := &domain.PDFAttachment{Filename: "mystery.pdf", Data: []byte("x"), PageCount: 1}

	if _, err := filer.Quarantine(ctx, bucket, att, nil, domain.SourceTypeEmail, "cfg-1"); err == nil {
		t.Fatal("expected error")
	}
	if content.Len() != 0 {
		t.Errorf("orphaned blob left behind: %d objects", content.Len())
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven/mocks"
)

func setupReview(t *testing.T) (*ReviewService, *mocks.MockUnindexedStore, *mocks.MockDocumentStore, *mocks.MockDocumentTypeStore) {
	t.Helper()
	unindexed := mocks.NewMockUnindexedStore()
	docs := mocks.NewMockDocumentStore()
	types := mocks.NewMockDocumentTypeStore()
	return NewReviewService(unindexed, docs, types, nil), unindexed, docs, types
}

func pendingItem(t *testing.T, store *mocks.MockUnindexedStore) *domain.UnindexedItem {
	t.Helper()
	item := domain.NewUnindexedItem("b1", "freight/unindexed/x.pdf", "x.pdf", 100, 2, []string{"XX-1"}, domain.SourceTypeEmail, "cfg-1")
	if err := store.Save(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func TestReview_Resolve(t *testing.T) {
	svc, unindexed, _, types := setupReview(t)
	ctx := context.Background()

	types.Save(ctx, &domain.DocumentType{ID: "dt-pod", Name: "POD", Active: true})
	item := pendingItem(t, unindexed)

	doc, err := svc.Resolve(ctx, item.ID, domain.Resolution{
		DetailLineID:   "55501",
		DocumentTypeID: "dt-pod",
		BillNumber:     "HB-9001",
	}, "ops@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.DetailLineID != "55501" || doc.DocumentType != "POD" || doc.BillNumber != "HB-9001" {
		t.Errorf("wrong document: %+v", doc)
	}
	// The catalog row reuses the stored artifact.
	if doc.StoragePath != item.StoragePath || doc.PageCount != 2 {
		t.Errorf("artifact not carried over: %+v", doc)
	}

	got, _ := unindexed.Get(ctx, item.ID)
	if got.Status != domain.UnindexedStatusIndexed || got.ResolvedBy != "ops@example.com" {
		t.Errorf("item not resolved: %+v", got)
	}
	if got.ResolvedAt == nil {
		t.Error("expected resolved timestamp")
	}
}

func TestReview_ListQueue_BucketFilter(t *testing.T) {
	svc, unindexed, _, _ := setupReview(t)
	ctx := context.Background()

	pendingItem(t, unindexed)
	other := domain.NewUnindexedItem("b2", "claims/unindexed/y.pdf", "y.pdf", 200, 1, nil, domain.SourceTypeEmail, "cfg-2")
	if err := unindexed.Save(ctx, other); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	items, err := svc.ListQueue(ctx, "b2", domain.UnindexedStatusPending, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].BucketID != "b2" {
		t.Fatalf("expected only the b2 item, got %+v", items)
	}

	all, err := svc.ListQueue(ctx, "", domain.UnindexedStatusPending, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("empty bucket filter must list everything, got %d", len(all))
	}
}

func TestReview_Resolve_MissingFields(t *testing.T) {
	svc, unindexed, _, _ := setupReview(t)
	item := pendingItem(t, unindexed)

	_, err := svc.Resolve(context.Background(), item.ID, domain.Resolution{DetailLineID: "1"}, "ops")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReview_Resolve_UnknownType(t *testing.T) {
	svc, unindexed, _, _ := setupReview(t)
	item := pendingItem(t, unindexed)

	_, err := svc.Resolve(context.Background(), item.ID, domain.Resolution{
		DetailLineID:   "1",
		DocumentTypeID: "nope",
	}, "ops")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReview_Resolve_AlreadyResolved(t *testing.T) {
	svc, unindexed, docs, types := setupReview(t)
	ctx := context.Background()

	types.Save(ctx, &domain.DocumentType{ID: "dt-pod", Name: "POD", Active: true})
	item := pendingItem(t, unindexed)

	res := domain.Resolution{DetailLineID: "1", DocumentTypeID: "dt-pod"}
	if _, err := svc.Resolve(ctx, item.ID, res, "first"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	_, err := svc.Resolve(ctx, item.ID, res, "second")
	if !errors.Is(err, domain.ErrItemResolved) {
		t.Fatalf("expected ErrItemResolved, got %v", err)
	}
	// Only the winner's document survives.
	count, _ := docs.Count(ctx, "b1")
	if count != 1 {
		t.Errorf("expected 1 document, got %d", count)
	}
}

func TestReview_Resolve_LostRaceRemovesDuplicate(t *testing.T) {
	svc, unindexed, docs, types := setupReview(t)
	ctx := context.Background()

	types.Save(ctx, &domain.DocumentType{ID: "dt-pod", Name: "POD", Active: true})
	item := pendingItem(t, unindexed)

	// Simulate a reviewer winning between our Get and Resolve.
	winner := *item
	winner.Status = domain.UnindexedStatusIndexed
	if err := unindexed.Resolve(ctx, &winner); err != nil {
		t.Fatalf("seed winner: %v", err)
	}

	_, err := svc.Resolve(ctx, item.ID, domain.Resolution{DetailLineID: "1", DocumentTypeID: "dt-pod"}, "loser")
	if !errors.Is(err, domain.ErrItemResolved) {
		t.Fatalf("expected ErrItemResolved, got %v", err)
	}
	count, _ := docs.Count(ctx, "b1")
	if count != 0 {
		t.Errorf("loser's document not cleaned up: %d rows", count)
	}
}

func TestReview_Discard(t *testing.T) {
	svc, unindexed, _, _ := setupReview(t)
	ctx := context.Background()
	item := pendingItem(t, unindexed)

	if err := svc.Discard(ctx, item.ID, "ops"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := unindexed.Get(ctx, item.ID)
	if got.Status != domain.UnindexedStatusDiscarded {
		t.Errorf("expected discarded, got %s", got.Status)
	}

	// Terminal: a second discard fails.
	if err := svc.Discard(ctx, item.ID, "ops"); !errors.Is(err, domain.ErrItemResolved) {
		t.Errorf("expected ErrItemResolved, got %v", err)
	}
}

func TestReview_PendingCount(t *testing.T) {
	svc, unindexed, _, _ := setupReview(t)
	ctx := context.Background()

	pendingItem(t, unindexed)
	item := pendingItem(t, unindexed)
	if err := svc.Discard(ctx, item.ID, "ops"); err != nil {
		t.Fatalf("discard: %v", err)
	}

	count, err := svc.PendingCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 pending, got %d", count)
	}
}

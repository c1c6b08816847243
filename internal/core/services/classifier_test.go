package services

import (
	"context"
	"errors"
	"testing"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven/mocks"
)

func setupClassifier(t *testing.T) (*Classifier, *mocks.MockPatternStore, *mocks.MockDocumentTypeStore) {
	t.Helper()
	patterns := mocks.NewMockPatternStore()
	types := mocks.NewMockDocumentTypeStore()
	return NewClassifier(patterns, types, nil), patterns, types
}

func seedType(t *testing.T, store *mocks.MockDocumentTypeStore, id, name string) {
	t.Helper()
	if err := store.Save(context.Background(), &domain.DocumentType{ID: id, Name: name, Active: true}); err != nil {
		t.Fatalf("seed type: %v", err)
	}
}

func TestClassifier_DynamicType(t *testing.T) {
	classifier, patterns, types := setupClassifier(t)
	ctx := context.Background()

	seedType(t, types, "dt-pod", "POD")
	patterns.Save(ctx, &domain.BarcodePattern{
		ID:       "p1",
		Template: domain.TokenDocumentType + "-" + domain.TokenDetailLineID,
		Priority: 1,
		Active:   true,
	})

	cls, err := classifier.Classify(ctx, []string{"POD-55501"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls == nil {
		t.Fatal("expected classification")
	}
	if cls.DocumentType != "POD" || cls.DocumentTypeID != "dt-pod" {
		t.Errorf("wrong type: %s/%s", cls.DocumentType, cls.DocumentTypeID)
	}
	if cls.DetailLineID != "55501" {
		t.Errorf("wrong detail line: %s", cls.DetailLineID)
	}
	if cls.PatternID != "p1" || cls.Barcode != "POD-55501" {
		t.Errorf("provenance not recorded: %+v", cls)
	}
	if cls.BillNumber != "" {
		t.Errorf("bill number must stay empty for automated classification, got %q", cls.BillNumber)
	}
}

func TestClassifier_FixedType(t *testing.T) {
	classifier, patterns, _ := setupClassifier(t)
	ctx := context.Background()

	// No catalog row for "BOL": a fixed-type pattern carries its own
	// type name and must still classify.
	patterns.Save(ctx, &domain.BarcodePattern{
		ID:                "p1",
		Template:          domain.TokenDetailLineID,
		FixedDocumentType: "BOL",
		Priority:          1,
		Active:            true,
	})

	cls, err := classifier.Classify(ctx, []string{"BOL-99887"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls == nil {
		t.Fatal("expected classification")
	}
	if cls.DocumentType != "BOL" || cls.DetailLineID != "99887" {
		t.Errorf("got %s/%s, want BOL/99887", cls.DocumentType, cls.DetailLineID)
	}
	if cls.DocumentTypeID != "" {
		t.Errorf("no catalog row exists, type ID must stay empty, got %q", cls.DocumentTypeID)
	}
}

func TestClassifier_FixedTypeResolvesCatalogID(t *testing.T) {
	classifier, patterns, types := setupClassifier(t)
	ctx := context.Background()

	seedType(t, types, "dt-bol", "BOL")
	patterns.Save(ctx, &domain.BarcodePattern{
		ID:                "p1",
		Template:          domain.TokenDetailLineID,
		FixedDocumentType: "bol",
		Priority:          1,
		Active:            true,
	})

	cls, err := classifier.Classify(ctx, []string{"BOL-99887"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls == nil {
		t.Fatal("expected classification")
	}
	// The catalog row is matched case-insensitively and supplies the
	// canonical name and ID.
	if cls.DocumentType != "BOL" || cls.DocumentTypeID != "dt-bol" {
		t.Errorf("got %s/%s, want BOL/dt-bol", cls.DocumentType, cls.DocumentTypeID)
	}
}

func TestClassifier_PriorityOrder(t *testing.T) {
	classifier, patterns, types := setupClassifier(t)
	ctx := context.Background()

	seedType(t, types, "dt-pod", "POD")
	// Both patterns extract successfully; the lower priority value wins
	// regardless of insertion order.
	patterns.Save(ctx, &domain.BarcodePattern{
		ID: "p-late", Template: domain.TokenDocumentType + "-" + domain.TokenDetailLineID,
		Priority: 10, Active: true,
	})
	patterns.Save(ctx, &domain.BarcodePattern{
		ID: "p-early", Template: domain.TokenDetailLineID, FixedDocumentType: "POD",
		Priority: 1, Active: true,
	})

	cls, err := classifier.Classify(ctx, []string{"POD-777"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls == nil || cls.PatternID != "p-early" {
		t.Fatalf("expected p-early to win, got %+v", cls)
	}
}

func TestClassifier_BarcodeOrderBeforePatternOrder(t *testing.T) {
	classifier, patterns, types := setupClassifier(t)
	ctx := context.Background()

	seedType(t, types, "dt-pod", "POD")
	seedType(t, types, "dt-bol", "BOL")
	patterns.Save(ctx, &domain.BarcodePattern{
		ID: "p1", Template: domain.TokenDocumentType + "-" + domain.TokenDetailLineID,
		Priority: 1, Active: true,
	})

	// The first detected barcode is tried to exhaustion before the second.
	cls, err := classifier.Classify(ctx, []string{"BOL-1", "POD-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls == nil || cls.Barcode != "BOL-1" {
		t.Fatalf("expected first barcode to win, got %+v", cls)
	}
}

func TestClassifier_UnknownTypeFallsThrough(t *testing.T) {
	classifier, patterns, types := setupClassifier(t)
	ctx := context.Background()

	seedType(t, types, "dt-pod", "POD")
	// p1 extracts "XYZ" which is not a registered type; p2 then matches.
	patterns.Save(ctx, &domain.BarcodePattern{
		ID: "p1", Template: domain.TokenDocumentType + "-" + domain.TokenDetailLineID,
		Priority: 1, Active: true,
	})
	patterns.Save(ctx, &domain.BarcodePattern{
		ID: "p2", Template: domain.TokenDetailLineID, FixedDocumentType: "POD",
		Priority: 2, Active: true,
	})

	cls, err := classifier.Classify(ctx, []string{"XYZ-42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls == nil || cls.PatternID != "p2" {
		t.Fatalf("expected fallthrough to p2, got %+v", cls)
	}
	if cls.DocumentType != "POD" || cls.DetailLineID != "XYZ-42" {
		t.Errorf("got %s/%s", cls.DocumentType, cls.DetailLineID)
	}
}

func TestClassifier_NoMatch(t *testing.T) {
	classifier, patterns, types := setupClassifier(t)
	ctx := context.Background()

	seedType(t, types, "dt-pod", "POD")
	patterns.Save(ctx, &domain.BarcodePattern{
		ID: "p1", Template: domain.TokenDocumentType + "-" + domain.TokenDetailLineID,
		Priority: 1, Active: true,
	})

	cls, err := classifier.Classify(ctx, []string{"garbage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls != nil {
		t.Fatalf("expected no classification, got %+v", cls)
	}
}

func TestClassifier_NoBarcodes(t *testing.T) {
	classifier, _, _ := setupClassifier(t)

	cls, err := classifier.Classify(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls != nil {
		t.Fatalf("expected no classification, got %+v", cls)
	}
}

func TestClassifier_PatternStoreError(t *testing.T) {
	classifier, patterns, _ := setupClassifier(t)
	wantErr := errors.New("db down")
	patterns.ListActiveFn = func() ([]*domain.BarcodePattern, error) {
		return nil, wantErr
	}

	_, err := classifier.Classify(context.Background(), []string{"POD-1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

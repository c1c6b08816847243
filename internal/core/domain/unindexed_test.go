package domain

import "testing"

func TestNewUnindexedItem_Defaults(t *testing.T) {
	item := NewUnindexedItem("bkt-1", "bkt-1/abc.pdf", "abc.pdf", 1024, 3, nil, SourceTypeEmail, "cfg-1")

	if item.ID == "" {
		t.Error("expected generated ID")
	}
	if item.Status != UnindexedStatusPending {
		t.Errorf("expected pending, got %s", item.Status)
	}
	if item.DetectedBarcodes == nil || len(item.DetectedBarcodes) != 0 {
		t.Errorf("nil barcodes must normalise to an empty slice, got %#v", item.DetectedBarcodes)
	}
	if item.SourceType != SourceTypeEmail || item.SourceConfigID != "cfg-1" {
		t.Errorf("provenance not recorded: %s %s", item.SourceType, item.SourceConfigID)
	}
}

func TestUnindexedItem_IsPending(t *testing.T) {
	item := NewUnindexedItem("bkt-1", "p", "f.pdf", 1, 1, []string{"X-1"}, SourceTypeEmail, "cfg-1")
	if !item.IsPending() {
		t.Error("new item must be pending")
	}

	item.Status = UnindexedStatusIndexed
	if item.IsPending() {
		t.Error("indexed item is not pending")
	}

	item.Status = UnindexedStatusDiscarded
	if item.IsPending() {
		t.Error("discarded item is not pending")
	}
}

func TestResolution_Validate(t *testing.T) {
	r := &Resolution{DetailLineID: "55501", DocumentTypeID: "dt-1"}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// BillNumber stays optional
	r.BillNumber = "B-9"
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error with bill number: %v", err)
	}

	if err := (&Resolution{DocumentTypeID: "dt-1"}).Validate(); err == nil {
		t.Error("expected error without detail line id")
	}
	if err := (&Resolution{DetailLineID: "55501"}).Validate(); err == nil {
		t.Error("expected error without document type")
	}
}

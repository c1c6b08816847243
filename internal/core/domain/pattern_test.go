package domain

import "testing"

func TestBarcodePattern_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pattern BarcodePattern
		wantErr bool
	}{
		{
			name: "dynamic template with both tokens",
			pattern: BarcodePattern{
				Template: "{documentType}-{detailLineId}",
				BucketID: "bkt-1",
			},
			wantErr: false,
		},
		{
			name: "fixed type with detail-only template",
			pattern: BarcodePattern{
				Template:          "{detailLineId}",
				FixedDocumentType: "BOL",
				BucketID:          "bkt-1",
			},
			wantErr: false,
		},
		{
			name: "missing detail capture",
			pattern: BarcodePattern{
				Template: "{documentType}",
				BucketID: "bkt-1",
			},
			wantErr: true,
		},
		{
			name: "dynamic template missing type token",
			pattern: BarcodePattern{
				Template: "{detailLineId}",
				BucketID: "bkt-1",
			},
			wantErr: true,
		},
		{
			name: "missing bucket",
			pattern: BarcodePattern{
				Template: "{documentType}-{detailLineId}",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pattern.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBarcodePattern_Extract_Dynamic(t *testing.T) {
	p := &BarcodePattern{Template: "{documentType}-{detailLineId}", Separator: "-"}

	docType, detail, ok := p.Extract("Invoice-4421")
	if !ok {
		t.Fatal("expected structural match")
	}
	if docType != "Invoice" || detail != "4421" {
		t.Errorf("got (%q, %q), want (Invoice, 4421)", docType, detail)
	}

	// Three segments do not fit the two-slot structure
	if _, _, ok := p.Extract("A-B-C"); ok {
		t.Error("expected no match for three segments")
	}

	// No separator at all
	if _, _, ok := p.Extract("Invoice4421"); ok {
		t.Error("expected no match without separator")
	}

	// Empty segments are not valid captures
	if _, _, ok := p.Extract("-4421"); ok {
		t.Error("expected no match for empty type segment")
	}
}

func TestBarcodePattern_Extract_FixedType(t *testing.T) {
	p := &BarcodePattern{Template: "{detailLineId}", Separator: "-", FixedDocumentType: "BOL"}

	docType, detail, ok := p.Extract("BOL-99887")
	if !ok {
		t.Fatal("expected match")
	}
	if docType != "BOL" || detail != "99887" {
		t.Errorf("got (%q, %q), want (BOL, 99887)", docType, detail)
	}

	// Prefix comparison is case-insensitive
	_, detail, ok = p.Extract("bol-42")
	if !ok || detail != "42" {
		t.Errorf("got (%q, %v), want (42, true)", detail, ok)
	}

	// A barcode without the fixed prefix is taken whole as the detail line
	docType, detail, ok = p.Extract("99887")
	if !ok || docType != "BOL" || detail != "99887" {
		t.Errorf("got (%q, %q, %v), want (BOL, 99887, true)", docType, detail, ok)
	}
}

func TestBarcodePattern_EffectiveSeparator(t *testing.T) {
	p := &BarcodePattern{}
	if sep := p.EffectiveSeparator(); sep != DefaultSeparator {
		t.Errorf("got %q, want default %q", sep, DefaultSeparator)
	}

	p.Separator = "_"
	if sep := p.EffectiveSeparator(); sep != "_" {
		t.Errorf("got %q, want _", sep)
	}

	docType, detail, ok := (&BarcodePattern{Template: "{documentType}_{detailLineId}", Separator: "_"}).Extract("POD_7")
	if !ok || docType != "POD" || detail != "7" {
		t.Errorf("got (%q, %q, %v)", docType, detail, ok)
	}
}

func TestSortPatterns(t *testing.T) {
	patterns := []*BarcodePattern{
		{ID: "c", Priority: 5},
		{ID: "a", Priority: 0},
		{ID: "b", Priority: 5},
	}

	SortPatterns(patterns)

	if patterns[0].ID != "a" {
		t.Errorf("expected lowest priority first, got %s", patterns[0].ID)
	}
	// Equal priorities stay ordered by ID for determinism
	if patterns[1].ID != "b" || patterns[2].ID != "c" {
		t.Errorf("expected stable tie-break, got %s, %s", patterns[1].ID, patterns[2].ID)
	}
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Template tokens recognised in a barcode pattern
const (
	TokenDocumentType = "{documentType}"
	TokenDetailLineID = "{detailLineId}"
)

// DefaultSeparator splits barcode segments when a pattern does not override it
const DefaultSeparator = "-"

// BarcodePattern is a classification rule mapping a barcode string shape to a
// document type and detail-line identifier. Patterns are evaluated in
// ascending Priority order; the first structurally-valid match wins.
type BarcodePattern struct {
	ID string `json:"id"`

	// Template holds the literal tokens {documentType} and {detailLineId},
	// e.g. "{documentType}-{detailLineId}". When FixedDocumentType is set the
	// type slot is ignored and the template degenerates to the detail capture.
	Template  string `json:"template"`
	Separator string `json:"separator"`

	// FixedDocumentType overrides the type slot with a constant when set
	FixedDocumentType string `json:"fixed_document_type,omitempty"`

	// BucketID is the content destination on match
	BucketID string `json:"bucket_id"`

	// Priority orders evaluation; lower value wins ties
	Priority int `json:"priority"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveSeparator returns the separator, defaulting when unset
func (p *BarcodePattern) EffectiveSeparator() string {
	if p.Separator == "" {
		return DefaultSeparator
	}
	return p.Separator
}

// Validate checks the pattern's structural invariants
func (p *BarcodePattern) Validate() error {
	if !strings.Contains(p.Template, TokenDetailLineID) {
		return fmt.Errorf("%w: template must capture %s", ErrInvalidInput, TokenDetailLineID)
	}
	if p.FixedDocumentType == "" && !strings.Contains(p.Template, TokenDocumentType) {
		return fmt.Errorf("%w: template must capture %s unless a fixed document type is set", ErrInvalidInput, TokenDocumentType)
	}
	if p.BucketID == "" {
		return fmt.Errorf("%w: pattern requires a target bucket", ErrInvalidInput)
	}
	return nil
}

// Extract applies the pattern's structure to a barcode and returns the
// document type and detail-line candidates. For fixed-type patterns the
// leading segment is stripped when it matches the fixed type and the
// remainder is the detail line; any non-empty remainder is accepted. For
// dynamic patterns the barcode must split into exactly two segments; whether
// the type segment names an active DocumentType is the classifier's job.
func (p *BarcodePattern) Extract(barcode string) (docType, detailLineID string, ok bool) {
	sep := p.EffectiveSeparator()

	if p.FixedDocumentType != "" {
		detail := barcode
		if parts := strings.SplitN(barcode, sep, 2); len(parts) == 2 && strings.EqualFold(parts[0], p.FixedDocumentType) {
			detail = parts[1]
		}
		if detail == "" {
			return "", "", false
		}
		return p.FixedDocumentType, detail, true
	}

	parts := strings.Split(barcode, sep)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// SortPatterns orders patterns by ascending priority, stable on ID so
// classification stays deterministic when priorities tie
func SortPatterns(patterns []*BarcodePattern) {
	for i := 1; i < len(patterns); i++ {
		for j := i; j > 0; j-- {
			a, b := patterns[j-1], patterns[j]
			if a.Priority < b.Priority || (a.Priority == b.Priority && a.ID <= b.ID) {
				break
			}
			patterns[j-1], patterns[j] = b, a
		}
	}
}

package domain

import "time"

// Document is a filed, classified artifact in the catalog.
// Immutable once created except for soft metadata.
type Document struct {
	ID       string `json:"id"`
	BucketID string `json:"bucket_id"`

	// DocumentType is the classification label name. DocumentTypeID is set
	// when an active catalog row matches; fixed-type patterns may classify
	// to a name with no catalog row.
	DocumentType   string `json:"document_type"`
	DocumentTypeID string `json:"document_type_id,omitempty"`

	// DetailLineID is the business-record key the document is filed against
	DetailLineID string `json:"detail_line_id"`
	BillNumber   string `json:"bill_number,omitempty"`

	StoragePath string `json:"storage_path"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	PageCount   int    `json:"page_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Classification is the outcome of matching a barcode against the active
// pattern set. BillNumber is never derived from a barcode; it stays empty
// for automated classification and is only supplied by manual indexing.
type Classification struct {
	BucketID       string `json:"bucket_id"`
	DocumentType   string `json:"document_type"`
	DocumentTypeID string `json:"document_type_id,omitempty"`
	DetailLineID   string `json:"detail_line_id"`
	BillNumber     string `json:"bill_number,omitempty"`

	// PatternID and Barcode record which rule and label produced the match
	PatternID string `json:"pattern_id"`
	Barcode   string `json:"barcode"`
}

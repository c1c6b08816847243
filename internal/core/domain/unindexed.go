package domain

import "time"

// UnindexedStatus is the lifecycle state of a quarantined document
type UnindexedStatus string

const (
	// UnindexedStatusPending awaits human resolution
	UnindexedStatusPending UnindexedStatus = "pending"
	// UnindexedStatusIndexed was promoted to a Document by an operator
	UnindexedStatusIndexed UnindexedStatus = "indexed"
	// UnindexedStatusDiscarded is terminal; bytes are retained for audit
	UnindexedStatusDiscarded UnindexedStatus = "discarded"
)

// UnindexedItem is a stored artifact that could not be auto-classified.
// The only legal transitions are pending→indexed and pending→discarded,
// both through explicit operator action.
type UnindexedItem struct {
	ID       string `json:"id"`
	BucketID string `json:"bucket_id"`

	StoragePath string `json:"storage_path"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	PageCount   int    `json:"page_count"`

	// DetectedBarcodes lists every barcode found on the attachment, in
	// detection order. Empty when no barcode was detected at all.
	DetectedBarcodes []string `json:"detected_barcodes"`

	SourceType     SourceType `json:"source_type"`
	SourceConfigID string     `json:"source_config_id"`

	Status UnindexedStatus `json:"status"`

	// Resolution metadata, set when an operator indexes the item
	DetailLineID   string     `json:"detail_line_id,omitempty"`
	DocumentTypeID string     `json:"document_type_id,omitempty"`
	BillNumber     string     `json:"bill_number,omitempty"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUnindexedItem creates a pending item for a stored artifact
func NewUnindexedItem(bucketID, storagePath, fileName string, size int64, pageCount int, barcodes []string, sourceType SourceType, sourceConfigID string) *UnindexedItem {
	if barcodes == nil {
		barcodes = []string{}
	}
	now := time.Now()
	return &UnindexedItem{
		ID:               GenerateID(),
		BucketID:         bucketID,
		StoragePath:      storagePath,
		FileName:         fileName,
		Size:             size,
		PageCount:        pageCount,
		DetectedBarcodes: barcodes,
		SourceType:       sourceType,
		SourceConfigID:   sourceConfigID,
		Status:           UnindexedStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsPending reports whether the item can still be resolved
func (i *UnindexedItem) IsPending() bool {
	return i.Status == UnindexedStatusPending
}

// Resolution carries the data an operator supplies to index a pending item
type Resolution struct {
	DetailLineID   string `json:"detail_line_id"`
	DocumentTypeID string `json:"document_type_id"`
	BillNumber     string `json:"bill_number,omitempty"`
}

// Validate checks the required resolution fields
func (r *Resolution) Validate() error {
	if r.DetailLineID == "" || r.DocumentTypeID == "" {
		return ErrInvalidInput
	}
	return nil
}

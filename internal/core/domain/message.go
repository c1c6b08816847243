package domain

import (
	"strings"
	"time"
)

// MessageRef is a provider-neutral handle on a candidate mailbox message
type MessageRef struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject,omitempty"`
	From       string    `json:"from,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// PDFAttachment is an extracted PDF blob with its page count.
// This is the seam between provider-specific message shapes and the
// rest of the pipeline.
type PDFAttachment struct {
	Filename  string `json:"filename"`
	Data      []byte `json:"-"`
	PageCount int    `json:"page_count"`
}

// Size returns the attachment byte size
func (a *PDFAttachment) Size() int64 {
	return int64(len(a.Data))
}

// IsPDFFilename reports whether a filename names a PDF, case-insensitively
func IsPDFFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// Package pdfutil wraps PDF inspection for the ingestion pipeline.
package pdfutil

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount returns the number of pages in a PDF. A corrupt or
// unreadable PDF yields a conservative count of 1 rather than an error,
// so a bad scan still flows through classification and filing.
func PageCount(data []byte) int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil || count < 1 {
		return 1
	}
	return count
}

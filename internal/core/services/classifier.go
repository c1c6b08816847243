package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Classifier matches detected barcodes against the active pattern set.
// Barcodes are tried in detection order; within a barcode, patterns are
// tried in ascending priority. The first extraction that resolves to a
// registered document type wins.
type Classifier struct {
	patternStore driven.PatternStore
	typeStore    driven.DocumentTypeStore
	logger       *slog.Logger
}

// NewClassifier creates a new Classifier
func NewClassifier(patternStore driven.PatternStore, typeStore driven.DocumentTypeStore, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		patternStore: patternStore,
		typeStore:    typeStore,
		logger:       logger,
	}
}

// Classify returns the first classification for the given barcodes, or
// nil when nothing matches. A nil result with nil error is the signal to
// queue the attachment for human review.
func (c *Classifier) Classify(ctx context.Context, barcodes []string) (*domain.Classification, error) {
	if len(barcodes) == 0 {
		return nil, nil
	}

	patterns, err := c.patternStore.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	domain.SortPatterns(patterns)

	types, err := c.typeStore.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document types: %w", err)
	}
	byName := make(map[string]*domain.DocumentType, len(types))
	for _, dt := range types {
		byName[strings.ToLower(dt.Name)] = dt
	}

	for _, barcode := range barcodes {
		for _, p := range patterns {
			docType, detailLineID, ok := p.Extract(barcode)
			if !ok {
				continue
			}

			cls := &domain.Classification{
				BucketID:     p.BucketID,
				DocumentType: docType,
				DetailLineID: detailLineID,
				PatternID:    p.ID,
				Barcode:      barcode,
			}

			// A fixed-type pattern names its own type and matches without
			// a catalog row; the ID is filled in when one happens to exist.
			if p.FixedDocumentType != "" {
				if dt, known := byName[strings.ToLower(docType)]; known {
					cls.DocumentType = dt.Name
					cls.DocumentTypeID = dt.ID
				}
				return cls, nil
			}

			// A dynamic pattern's extracted type must resolve to an active
			// document type, otherwise the next pattern gets a chance.
			dt, known := byName[strings.ToLower(docType)]
			if !known {
				c.logger.Debug("extracted type not registered",
					"barcode", barcode, "pattern_id", p.ID, "document_type", docType)
				continue
			}
			cls.DocumentType = dt.Name
			cls.DocumentTypeID = dt.ID
			return cls, nil
		}
	}

	return nil, nil
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PatternStore = (*PatternStore)(nil)

// PatternStore implements driven.PatternStore using PostgreSQL
type PatternStore struct {
	db *DB
}

// NewPatternStore creates a new PatternStore
func NewPatternStore(db *DB) *PatternStore {
	return &PatternStore{db: db}
}

// Save creates or updates a pattern
func (s *PatternStore) Save(ctx context.Context, p *domain.BarcodePattern) error {
	query := `
		INSERT INTO barcode_patterns (id, template, separator, fixed_document_type, bucket_id, priority, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			template = EXCLUDED.template,
			separator = EXCLUDED.separator,
			fixed_document_type = EXCLUDED.fixed_document_type,
			bucket_id = EXCLUDED.bucket_id,
			priority = EXCLUDED.priority,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	var bucketID sql.NullString
	if p.BucketID != "" {
		bucketID = sql.NullString{String: p.BucketID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.Template,
		p.Separator,
		p.FixedDocumentType,
		bucketID,
		p.Priority,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

const patternColumns = `id, template, separator, fixed_document_type, bucket_id, priority, active, created_at, updated_at`

// Get retrieves a pattern by ID
func (s *PatternStore) Get(ctx context.Context, id string) (*domain.BarcodePattern, error) {
	query := `SELECT ` + patternColumns + ` FROM barcode_patterns WHERE id = $1`
	return scanPattern(s.db.QueryRowContext(ctx, query, id))
}

// List retrieves all patterns in priority order
func (s *PatternStore) List(ctx context.Context) ([]*domain.BarcodePattern, error) {
	return s.query(ctx, `SELECT `+patternColumns+` FROM barcode_patterns ORDER BY priority, id`)
}

// ListActive retrieves active patterns in ascending priority order
func (s *PatternStore) ListActive(ctx context.Context) ([]*domain.BarcodePattern, error) {
	return s.query(ctx, `SELECT `+patternColumns+` FROM barcode_patterns WHERE active = TRUE ORDER BY priority, id`)
}

// Delete deletes a pattern
func (s *PatternStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM barcode_patterns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PatternStore) query(ctx context.Context, query string) ([]*domain.BarcodePattern, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []*domain.BarcodePattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func scanPattern(row rowScanner) (*domain.BarcodePattern, error) {
	var (
		p        domain.BarcodePattern
		bucketID sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.Template,
		&p.Separator,
		&p.FixedDocumentType,
		&bucketID,
		&p.Priority,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if bucketID.Valid {
		p.BucketID = bucketID.String
	}
	return &p, nil
}

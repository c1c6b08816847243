package postgres

import (
	"context"
	"database/sql"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save creates or updates a document row
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, bucket_id, document_type, document_type_id, detail_line_id, bill_number, storage_path, file_name, size_bytes, page_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			document_type = EXCLUDED.document_type,
			document_type_id = EXCLUDED.document_type_id,
			detail_line_id = EXCLUDED.detail_line_id,
			bill_number = EXCLUDED.bill_number,
			updated_at = EXCLUDED.updated_at
	`

	var typeID sql.NullString
	if doc.DocumentTypeID != "" {
		typeID = sql.NullString{String: doc.DocumentTypeID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.BucketID,
		doc.DocumentType,
		typeID,
		doc.DetailLineID,
		doc.BillNumber,
		doc.StoragePath,
		doc.FileName,
		doc.Size,
		doc.PageCount,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

const documentColumns = `id, bucket_id, document_type, document_type_id, detail_line_id, bill_number, storage_path, file_name, size_bytes, page_count, created_at, updated_at`

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(s.db.QueryRowContext(ctx, query, id))
}

// List retrieves documents for a bucket, newest first
func (s *DocumentStore) List(ctx context.Context, bucketID string, limit, offset int) ([]*domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE bucket_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return s.queryDocuments(ctx, query, bucketID, limit, offset)
}

// ListByDetailLine retrieves documents attached to a detail line
func (s *DocumentStore) ListByDetailLine(ctx context.Context, detailLineID string) ([]*domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE detail_line_id = $1
		ORDER BY created_at DESC
	`
	return s.queryDocuments(ctx, query, detailLineID)
}

// Count returns the number of documents in a bucket
func (s *DocumentStore) Count(ctx context.Context, bucketID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE bucket_id = $1`, bucketID,
	).Scan(&count)
	return count, err
}

// Delete deletes a document row
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
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

func (s *DocumentStore) queryDocuments(ctx context.Context, query string, args ...any) ([]*domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc    domain.Document
		typeID sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.BucketID,
		&doc.DocumentType,
		&typeID,
		&doc.DetailLineID,
		&doc.BillNumber,
		&doc.StoragePath,
		&doc.FileName,
		&doc.Size,
		&doc.PageCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if typeID.Valid {
		doc.DocumentTypeID = typeID.String
	}
	return &doc, nil
}

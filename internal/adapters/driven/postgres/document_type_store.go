package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentTypeStore = (*DocumentTypeStore)(nil)

// DocumentTypeStore implements driven.DocumentTypeStore using PostgreSQL
type DocumentTypeStore struct {
	db *DB
}

// NewDocumentTypeStore creates a new DocumentTypeStore
func NewDocumentTypeStore(db *DB) *DocumentTypeStore {
	return &DocumentTypeStore{db: db}
}

// Save creates or updates a document type
func (s *DocumentTypeStore) Save(ctx context.Context, dt *domain.DocumentType) error {
	query := `
		INSERT INTO document_types (id, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		dt.ID, dt.Name, dt.Active, dt.CreatedAt, dt.UpdatedAt,
	)
	return err
}

// Get retrieves a document type by ID
func (s *DocumentTypeStore) Get(ctx context.Context, id string) (*domain.DocumentType, error) {
	query := `SELECT id, name, active, created_at, updated_at FROM document_types WHERE id = $1`

	var dt domain.DocumentType
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&dt.ID, &dt.Name, &dt.Active, &dt.CreatedAt, &dt.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// List retrieves all document types
func (s *DocumentTypeStore) List(ctx context.Context) ([]*domain.DocumentType, error) {
	return s.query(ctx, `SELECT id, name, active, created_at, updated_at FROM document_types ORDER BY name`)
}

// ListActive retrieves the active types the classifier matches against
func (s *DocumentTypeStore) ListActive(ctx context.Context) ([]*domain.DocumentType, error) {
	return s.query(ctx, `SELECT id, name, active, created_at, updated_at FROM document_types WHERE active = TRUE ORDER BY name`)
}

// Delete deletes a document type unless documents reference it
func (s *DocumentTypeStore) Delete(ctx context.Context, id string) error {
	var inUse bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE document_type_id = $1)`, id,
	).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: document type %s", domain.ErrDocumentTypeInUse, id)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM document_types WHERE id = $1`, id)
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

func (s *DocumentTypeStore) query(ctx context.Context, query string) ([]*domain.DocumentType, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*domain.DocumentType
	for rows.Next() {
		var dt domain.DocumentType
		if err := rows.Scan(&dt.ID, &dt.Name, &dt.Active, &dt.CreatedAt, &dt.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, &dt)
	}
	return types, rows.Err()
}

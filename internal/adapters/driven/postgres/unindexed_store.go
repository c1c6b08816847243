package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UnindexedStore = (*UnindexedStore)(nil)

// UnindexedStore implements driven.UnindexedStore using PostgreSQL
type UnindexedStore struct {
	db *DB
}

// NewUnindexedStore creates a new UnindexedStore
func NewUnindexedStore(db *DB) *UnindexedStore {
	return &UnindexedStore{db: db}
}

// Save creates an unindexed item
func (s *UnindexedStore) Save(ctx context.Context, item *domain.UnindexedItem) error {
	barcodes, err := json.Marshal(item.DetectedBarcodes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO unindexed_items (
			id, bucket_id, storage_path, file_name, size_bytes, page_count,
			detected_barcodes, source_type, source_config_id, status,
			detail_line_id, document_type_id, bill_number, resolved_by, resolved_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = s.db.ExecContext(ctx, query,
		item.ID,
		item.BucketID,
		item.StoragePath,
		item.FileName,
		item.Size,
		item.PageCount,
		barcodes,
		string(item.SourceType),
		item.SourceConfigID,
		string(item.Status),
		item.DetailLineID,
		item.DocumentTypeID,
		item.BillNumber,
		item.ResolvedBy,
		NullTime(item.ResolvedAt),
		item.CreatedAt,
		item.UpdatedAt,
	)
	return err
}

const unindexedColumns = `
	id, bucket_id, storage_path, file_name, size_bytes, page_count,
	detected_barcodes, source_type, source_config_id, status,
	detail_line_id, document_type_id, bill_number, resolved_by, resolved_at,
	created_at, updated_at
`

// Get retrieves an item by ID
func (s *UnindexedStore) Get(ctx context.Context, id string) (*domain.UnindexedItem, error) {
	query := `SELECT ` + unindexedColumns + ` FROM unindexed_items WHERE id = $1`
	return scanUnindexed(s.db.QueryRowContext(ctx, query, id))
}

// List retrieves items filtered by bucket and status, newest first.
// Empty filters are left off the WHERE clause.
func (s *UnindexedStore) List(ctx context.Context, bucketID string, status domain.UnindexedStatus, limit, offset int) ([]*domain.UnindexedItem, error) {
	query := `SELECT ` + unindexedColumns + ` FROM unindexed_items`
	var (
		conds []string
		args  []any
	)
	if bucketID != "" {
		args = append(args, bucketID)
		conds = append(conds, fmt.Sprintf("bucket_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, string(status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.UnindexedItem
	for rows.Next() {
		item, err := scanUnindexed(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountPending returns the number of items awaiting review
func (s *UnindexedStore) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unindexed_items WHERE status = 'pending'`,
	).Scan(&count)
	return count, err
}

// Resolve transitions a pending item with a conditional update on status.
// Concurrent reviewers race on the WHERE clause; the loser sees zero rows
// affected and gets ErrItemResolved.
func (s *UnindexedStore) Resolve(ctx context.Context, item *domain.UnindexedItem) error {
	query := `
		UPDATE unindexed_items SET
			status = $2,
			detail_line_id = $3,
			document_type_id = $4,
			bill_number = $5,
			resolved_by = $6,
			resolved_at = $7,
			updated_at = $8
		WHERE id = $1 AND status = 'pending'
	`

	result, err := s.db.ExecContext(ctx, query,
		item.ID,
		string(item.Status),
		item.DetailLineID,
		item.DocumentTypeID,
		item.BillNumber,
		item.ResolvedBy,
		NullTime(item.ResolvedAt),
		item.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a lost race from a missing row.
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM unindexed_items WHERE id = $1)`, item.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return domain.ErrItemResolved
		}
		return domain.ErrNotFound
	}
	return nil
}

func scanUnindexed(row rowScanner) (*domain.UnindexedItem, error) {
	var (
		item       domain.UnindexedItem
		barcodes   []byte
		resolvedAt sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.BucketID,
		&item.StoragePath,
		&item.FileName,
		&item.Size,
		&item.PageCount,
		&barcodes,
		&item.SourceType,
		&item.SourceConfigID,
		&item.Status,
		&item.DetailLineID,
		&item.DocumentTypeID,
		&item.BillNumber,
		&item.ResolvedBy,
		&resolvedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(barcodes, &item.DetectedBarcodes); err != nil {
		return nil, err
	}
	if item.DetectedBarcodes == nil {
		item.DetectedBarcodes = []string{}
	}
	item.ResolvedAt = TimePtr(resolvedAt)

	return &item, nil
}

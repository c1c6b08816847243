package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BucketStore = (*BucketStore)(nil)

// BucketStore implements driven.BucketStore using PostgreSQL
type BucketStore struct {
	db *DB
}

// NewBucketStore creates a new BucketStore
func NewBucketStore(db *DB) *BucketStore {
	return &BucketStore{db: db}
}

// Save creates or updates a bucket
func (s *BucketStore) Save(ctx context.Context, bucket *domain.Bucket) error {
	query := `
		INSERT INTO buckets (id, name, base_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			base_url = EXCLUDED.base_url,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		bucket.ID,
		bucket.Name,
		bucket.BaseURL,
		bucket.Active,
		bucket.CreatedAt,
		bucket.UpdatedAt,
	)
	return err
}

// Get retrieves a bucket by ID
func (s *BucketStore) Get(ctx context.Context, id string) (*domain.Bucket, error) {
	query := `SELECT id, name, base_url, active, created_at, updated_at FROM buckets WHERE id = $1`

	var b domain.Bucket
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.BaseURL, &b.Active, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List retrieves all buckets
func (s *BucketStore) List(ctx context.Context) ([]*domain.Bucket, error) {
	query := `SELECT id, name, base_url, active, created_at, updated_at FROM buckets ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []*domain.Bucket
	for rows.Next() {
		var b domain.Bucket
		if err := rows.Scan(&b.ID, &b.Name, &b.BaseURL, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		buckets = append(buckets, &b)
	}
	return buckets, rows.Err()
}

// Delete deletes a bucket. Fails with ErrBucketInUse when documents,
// patterns or monitor configs still reference it.
func (s *BucketStore) Delete(ctx context.Context, id string) error {
	var inUse bool
	query := `
		SELECT EXISTS (SELECT 1 FROM documents WHERE bucket_id = $1)
			OR EXISTS (SELECT 1 FROM barcode_patterns WHERE bucket_id = $1)
			OR EXISTS (SELECT 1 FROM monitor_configs WHERE bucket_id = $1)
			OR EXISTS (SELECT 1 FROM unindexed_items WHERE bucket_id = $1)
	`
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: bucket %s", domain.ErrBucketInUse, id)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM buckets WHERE id = $1`, id)
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

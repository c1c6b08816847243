package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MonitorStore = (*MonitorStore)(nil)

// MonitorStore implements driven.MonitorStore using PostgreSQL.
// Provider credentials are encrypted before they are written.
type MonitorStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewMonitorStore creates a new MonitorStore
func NewMonitorStore(db *DB, encryptor *SecretEncryptor) *MonitorStore {
	return &MonitorStore{db: db, encryptor: encryptor}
}

// Save creates or updates a monitor config
func (s *MonitorStore) Save(ctx context.Context, cfg *domain.MonitorConfig) error {
	credentials, err := s.encryptor.Encrypt(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("encrypt credentials: %w", err)
	}

	query := `
		INSERT INTO monitor_configs (
			id, name, provider, credentials, bucket_id, poll_interval_secs,
			last_check, check_all_messages,
			success_action, success_folder, failure_action, failure_folder,
			enabled, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			provider = EXCLUDED.provider,
			credentials = EXCLUDED.credentials,
			bucket_id = EXCLUDED.bucket_id,
			poll_interval_secs = EXCLUDED.poll_interval_secs,
			last_check = EXCLUDED.last_check,
			check_all_messages = EXCLUDED.check_all_messages,
			success_action = EXCLUDED.success_action,
			success_folder = EXCLUDED.success_folder,
			failure_action = EXCLUDED.failure_action,
			failure_folder = EXCLUDED.failure_folder,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
	`

	var bucketID sql.NullString
	if cfg.BucketID != "" {
		bucketID = sql.NullString{String: cfg.BucketID, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.Name,
		string(cfg.Provider),
		credentials,
		bucketID,
		int64(cfg.PollInterval/time.Second),
		NullTime(cfg.LastCheck),
		cfg.CheckAllMessages,
		string(cfg.SuccessAction),
		cfg.SuccessFolder,
		string(cfg.FailureAction),
		cfg.FailureFolder,
		cfg.Enabled,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	return err
}

const monitorColumns = `
	id, name, provider, credentials, bucket_id, poll_interval_secs,
	last_check, check_all_messages,
	success_action, success_folder, failure_action, failure_folder,
	enabled, created_at, updated_at
`

// Get retrieves a monitor config by ID
func (s *MonitorStore) Get(ctx context.Context, id string) (*domain.MonitorConfig, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitor_configs WHERE id = $1`
	return s.scanConfig(s.db.QueryRowContext(ctx, query, id))
}

// List retrieves all monitor configs
func (s *MonitorStore) List(ctx context.Context) ([]*domain.MonitorConfig, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitor_configs ORDER BY created_at`
	return s.queryConfigs(ctx, query)
}

// ListEnabled retrieves configs eligible for scheduling
func (s *MonitorStore) ListEnabled(ctx context.Context) ([]*domain.MonitorConfig, error) {
	query := `SELECT ` + monitorColumns + ` FROM monitor_configs WHERE enabled = TRUE ORDER BY created_at`
	return s.queryConfigs(ctx, query)
}

// AdvanceCursor persists the lastCheck watermark for a config
func (s *MonitorStore) AdvanceCursor(ctx context.Context, id string, lastCheck time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE monitor_configs SET last_check = $2, updated_at = $2 WHERE id = $1`,
		id, lastCheck,
	)
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

// Delete deletes a monitor config
func (s *MonitorStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM monitor_configs WHERE id = $1`, id)
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

func (s *MonitorStore) queryConfigs(ctx context.Context, query string, args ...any) ([]*domain.MonitorConfig, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.MonitorConfig
	for rows.Next() {
		cfg, err := s.scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (s *MonitorStore) scanConfig(row rowScanner) (*domain.MonitorConfig, error) {
	var (
		cfg          domain.MonitorConfig
		credentials  []byte
		bucketID     sql.NullString
		intervalSecs int64
		lastCheck    sql.NullTime
	)

	err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.Provider,
		&credentials,
		&bucketID,
		&intervalSecs,
		&lastCheck,
		&cfg.CheckAllMessages,
		&cfg.SuccessAction,
		&cfg.SuccessFolder,
		&cfg.FailureAction,
		&cfg.FailureFolder,
		&cfg.Enabled,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.encryptor.Decrypt(credentials, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("decrypt credentials: %w", err)
	}

	if bucketID.Valid {
		cfg.BucketID = bucketID.String
	}
	cfg.PollInterval = time.Duration(intervalSecs) * time.Second
	cfg.LastCheck = TimePtr(lastCheck)

	return &cfg, nil
}

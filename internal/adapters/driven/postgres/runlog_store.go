package postgres

import (
	"context"
	"database/sql"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RunLogStore = (*RunLogStore)(nil)

// RunLogStore implements driven.RunLogStore using PostgreSQL
type RunLogStore struct {
	db *DB
}

// NewRunLogStore creates a new RunLogStore
func NewRunLogStore(db *DB) *RunLogStore {
	return &RunLogStore{db: db}
}

// Save records a completed run
func (s *RunLogStore) Save(ctx context.Context, log *domain.PollRunLog) error {
	query := `
		INSERT INTO poll_run_logs (id, config_id, provider, status, emails_found, pdfs_processed, indexed, unindexed, errors, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		log.ID,
		log.ConfigID,
		string(log.Provider),
		string(log.Status),
		log.EmailsFound,
		log.PDFsProcessed,
		log.Indexed,
		log.Unindexed,
		log.Errors,
		log.Error,
		log.CreatedAt,
	)
	return err
}

const runLogColumns = `id, config_id, provider, status, emails_found, pdfs_processed, indexed, unindexed, errors, error, created_at`

// List retrieves run logs, newest first. Empty configID spans all configs.
func (s *RunLogStore) List(ctx context.Context, configID string, limit, offset int) ([]*domain.PollRunLog, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if configID == "" {
		query := `SELECT ` + runLogColumns + ` FROM poll_run_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		rows, err = s.db.QueryContext(ctx, query, limit, offset)
	} else {
		query := `SELECT ` + runLogColumns + ` FROM poll_run_logs WHERE config_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		rows, err = s.db.QueryContext(ctx, query, configID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.PollRunLog
	for rows.Next() {
		log, err := scanRunLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// Latest retrieves the most recent run for a config
func (s *RunLogStore) Latest(ctx context.Context, configID string) (*domain.PollRunLog, error) {
	query := `SELECT ` + runLogColumns + ` FROM poll_run_logs WHERE config_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanRunLog(s.db.QueryRowContext(ctx, query, configID))
}

// Prune keeps the most recent keep entries per config and removes the rest
func (s *RunLogStore) Prune(ctx context.Context, keep int) (int, error) {
	query := `
		DELETE FROM poll_run_logs
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY config_id ORDER BY created_at DESC) AS rn
				FROM poll_run_logs
			) ranked
			WHERE ranked.rn > $1
		)
	`
	result, err := s.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func scanRunLog(row rowScanner) (*domain.PollRunLog, error) {
	var log domain.PollRunLog
	err := row.Scan(
		&log.ID,
		&log.ConfigID,
		&log.Provider,
		&log.Status,
		&log.EmailsFound,
		&log.PDFsProcessed,
		&log.Indexed,
		&log.Unindexed,
		&log.Errors,
		&log.Error,
		&log.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

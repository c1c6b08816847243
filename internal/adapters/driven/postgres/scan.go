package postgres

import (
	"database/sql"
	"time"
)

// rowScanner lets the per-store scan helpers accept both *sql.Row and
// *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// NullTime converts a time pointer to sql.NullTime
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// TimePtr converts sql.NullTime to time pointer
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

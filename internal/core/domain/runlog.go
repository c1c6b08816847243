package domain

import (
	"fmt"
	"time"
)

// RunStatus summarises the outcome of a poll run
type RunStatus string

const (
	// RunStatusSuccess means every message and attachment processed cleanly
	RunStatusSuccess RunStatus = "success"
	// RunStatusPartial means some attachments or messages failed but the run completed
	RunStatusPartial RunStatus = "partial"
	// RunStatusFailure is reserved for aborts before any message was listed
	RunStatusFailure RunStatus = "failure"
)

// PollStats are the counters accumulated over one poll run
type PollStats struct {
	EmailsFound   int `json:"emails_found"`
	PDFsProcessed int `json:"pdfs_processed"`
	Indexed       int `json:"indexed"`
	Unindexed     int `json:"unindexed"`
	Errors        int `json:"errors"`
}

// Status derives the run status from the counters. Pre-listing aborts use
// RunStatusFailure directly rather than deriving it here.
func (s PollStats) Status() RunStatus {
	if s.Errors > 0 {
		return RunStatusPartial
	}
	return RunStatusSuccess
}

// Summary renders the operator-facing one-line outcome
func (s PollStats) Summary() string {
	return fmt.Sprintf("%d emails found, %d PDFs processed, %d indexed, %d queued for review, %d errors",
		s.EmailsFound, s.PDFsProcessed, s.Indexed, s.Unindexed, s.Errors)
}

// PollRunLog is the append-only audit record written after each run.
// Never mutated after insert.
type PollRunLog struct {
	ID       string       `json:"id"`
	ConfigID string       `json:"config_id"`
	Provider ProviderType `json:"provider"`
	Status   RunStatus    `json:"status"`

	EmailsFound   int `json:"emails_found"`
	PDFsProcessed int `json:"pdfs_processed"`
	Indexed       int `json:"indexed"`
	Unindexed     int `json:"unindexed"`
	Errors        int `json:"errors"`

	// Error holds the abort reason for failure runs, or a short error summary
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewPollRunLog builds an audit row for a completed or aborted run
func NewPollRunLog(cfg *MonitorConfig, status RunStatus, stats PollStats, errMsg string) *PollRunLog {
	return &PollRunLog{
		ID:            GenerateID(),
		ConfigID:      cfg.ID,
		Provider:      cfg.Provider,
		Status:        status,
		EmailsFound:   stats.EmailsFound,
		PDFsProcessed: stats.PDFsProcessed,
		Indexed:       stats.Indexed,
		Unindexed:     stats.Unindexed,
		Errors:        stats.Errors,
		Error:         errMsg,
		CreatedAt:     time.Now(),
	}
}

// PollResult is returned to the caller that triggered a run
type PollResult struct {
	ConfigID string    `json:"config_id"`
	Status   RunStatus `json:"status"`
	Stats    PollStats `json:"stats"`
	Summary  string    `json:"summary"`
	Duration float64   `json:"duration_seconds"`
	Error    string    `json:"error,omitempty"`
}

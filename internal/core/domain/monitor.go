package domain

import (
	"fmt"
	"time"
)

// ProviderCredentials holds the stored secrets needed to obtain a short-lived
// access token from a provider.
type ProviderCredentials struct {
	// Office 365 client-credentials grant
	TenantID     string `json:"tenant_id,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`

	// Gmail refresh-token grant (ClientID/ClientSecret shared with above)
	RefreshToken string `json:"refresh_token,omitempty"`

	// Mailbox is the address or user principal whose inbox is polled
	Mailbox string `json:"mailbox,omitempty"`
}

// MonitorConfig is a per-tenant mailbox monitoring configuration.
// The administrative surface owns every field except LastCheck, which is
// advanced by the poll orchestrator after each run.
type MonitorConfig struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Provider    ProviderType        `json:"provider"`
	Credentials ProviderCredentials `json:"credentials"`

	// BucketID is the content bucket classified documents are filed into
	BucketID string `json:"bucket_id"`

	// PollInterval is how often the scheduler triggers a run
	PollInterval time.Duration `json:"poll_interval"`

	// LastCheck is the cursor bounding which messages are eligible.
	// Nil means the mailbox has never been polled.
	LastCheck *time.Time `json:"last_check,omitempty"`

	// CheckAllMessages ignores the cursor and lists the full unread set
	CheckAllMessages bool `json:"check_all_messages"`

	// Post-processing applied per message depending on its outcome
	SuccessAction PostProcessAction `json:"success_action"`
	SuccessFolder string            `json:"success_folder,omitempty"`
	FailureAction PostProcessAction `json:"failure_action"`
	FailureFolder string            `json:"failure_folder,omitempty"`

	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks that the config is complete enough to run a poll
func (c *MonitorConfig) Validate() error {
	if !c.Provider.Valid() {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, c.Provider)
	}
	if !c.SuccessAction.Valid() || !c.FailureAction.Valid() {
		return fmt.Errorf("%w: unknown post-process action", ErrInvalidInput)
	}
	if c.SuccessAction.NeedsFolder() && c.SuccessFolder == "" {
		return fmt.Errorf("%w: success action %q requires a folder", ErrInvalidInput, c.SuccessAction)
	}
	if c.FailureAction.NeedsFolder() && c.FailureFolder == "" {
		return fmt.Errorf("%w: failure action %q requires a folder", ErrInvalidInput, c.FailureAction)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidInput)
	}
	return nil
}

// Runnable reports whether a poll run should do any work at all.
// A disabled config or one without a target bucket is a no-op, not an error.
func (c *MonitorConfig) Runnable() bool {
	return c.Enabled && c.BucketID != ""
}

// CursorBound returns the timestamp bounding candidate messages and whether
// the bound applies. CheckAllMessages overrides the cursor entirely.
func (c *MonitorConfig) CursorBound() (time.Time, bool) {
	if c.CheckAllMessages || c.LastCheck == nil {
		return time.Time{}, false
	}
	return *c.LastCheck, true
}

// AdvanceCursor moves LastCheck to the given instant. Called unconditionally
// after a run so already-seen messages are never redelivered.
func (c *MonitorConfig) AdvanceCursor(now time.Time) {
	t := now
	c.LastCheck = &t
	c.UpdatedAt = now
}

// IsDue reports whether the scheduler should trigger a run now
func (c *MonitorConfig) IsDue(now time.Time) bool {
	if !c.Enabled {
		return false
	}
	if c.LastCheck == nil {
		return true
	}
	return now.After(c.LastCheck.Add(c.PollInterval))
}

// ActionForOutcome selects the post-process action and folder for a
// message's overall outcome
func (c *MonitorConfig) ActionForOutcome(success bool) (PostProcessAction, string) {
	if success {
		return c.SuccessAction, c.SuccessFolder
	}
	return c.FailureAction, c.FailureFolder
}

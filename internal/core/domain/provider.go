package domain

// ProviderType identifies a supported mailbox provider
type ProviderType string

const (
	// ProviderTypeOffice365 polls a Microsoft 365 mailbox via the Graph API
	ProviderTypeOffice365 ProviderType = "office365"
	// ProviderTypeGmail polls a Gmail mailbox via the Gmail API
	ProviderTypeGmail ProviderType = "gmail"
)

// Valid reports whether the provider type is one we can connect to
func (p ProviderType) Valid() bool {
	switch p {
	case ProviderTypeOffice365, ProviderTypeGmail:
		return true
	}
	return false
}

// AllProviderTypes returns every supported provider type
func AllProviderTypes() []ProviderType {
	return []ProviderType{ProviderTypeOffice365, ProviderTypeGmail}
}

// PostProcessAction is the mutation applied to a source message after it
// has been consumed by a poll run
type PostProcessAction string

const (
	// ActionNone leaves the message untouched
	ActionNone PostProcessAction = "none"
	// ActionMarkRead flags the message as read
	ActionMarkRead PostProcessAction = "mark_read"
	// ActionMove moves the message to a named folder/label
	ActionMove PostProcessAction = "move"
	// ActionArchive removes the message from the inbox
	ActionArchive PostProcessAction = "archive"
	// ActionDelete deletes (or trashes) the message
	ActionDelete PostProcessAction = "delete"
)

// Valid reports whether the action is a known post-processing action
func (a PostProcessAction) Valid() bool {
	switch a {
	case ActionNone, ActionMarkRead, ActionMove, ActionArchive, ActionDelete:
		return true
	}
	return false
}

// NeedsFolder reports whether the action requires a destination folder or label
func (a PostProcessAction) NeedsFolder() bool {
	return a == ActionMove
}

// SourceType identifies how a quarantined document entered the system
type SourceType string

const (
	// SourceTypeEmail marks documents ingested by the mailbox poller
	SourceTypeEmail SourceType = "email"
	// SourceTypeSFTP marks documents ingested by the SFTP connector
	SourceTypeSFTP SourceType = "sftp"
)

package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrPollInProgress indicates a poll run is already running for this config
	ErrPollInProgress = errors.New("poll already in progress")

	// ErrConnectorNotFound indicates the provider type is not registered
	ErrConnectorNotFound = errors.New("connector not found")

	// ErrAuthFailed indicates the provider rejected the stored credentials
	ErrAuthFailed = errors.New("provider authentication failed")

	// ErrItemResolved indicates the unindexed item was already resolved
	ErrItemResolved = errors.New("item already resolved")

	// ErrBucketInUse indicates the bucket is referenced by documents or patterns
	ErrBucketInUse = errors.New("bucket in use")

	// ErrDocumentTypeInUse indicates the type is referenced by documents
	ErrDocumentTypeInUse = errors.New("document type in use")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")
)

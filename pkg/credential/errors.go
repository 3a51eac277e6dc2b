package credential

import "errors"

var (
	// ErrNoCredential indicates the store holds no token
	ErrNoCredential = errors.New("credential.not_found")

	// ErrEmptyToken indicates an attempt to persist an empty token
	ErrEmptyToken = errors.New("credential.empty_token")

	// ErrUnknownBackend indicates an unsupported CREDENTIAL_BACKEND value
	ErrUnknownBackend = errors.New("credential.unknown_backend")

	// ErrStorage wraps failures of the underlying storage
	ErrStorage = errors.New("credential.storage_failed")
)

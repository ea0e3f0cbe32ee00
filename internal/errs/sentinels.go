// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials indicates failed authentication (unknown email or wrong credential).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnavailable indicates the store could not be opened.
	ErrUnavailable = errors.New("store unavailable")

	// ErrMigrationFailed indicates an incomplete schema migration; the store is unusable.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrWriteFailed indicates a store write did not complete.
	ErrWriteFailed = errors.New("write failed")

	// ErrNoImages indicates a generation run produced zero images when at least one was required.
	ErrNoImages = errors.New("no images produced")
)

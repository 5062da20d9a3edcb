// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repository/provider/service layers.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials, invalid token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated user acting on a record they do not own.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates a temporary sign-in lock.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates caller input rejected before reaching the backend.
	ErrValidation = errors.New("validation")

	// ErrNoSession indicates an operation that needs a signed-in user was called without one.
	ErrNoSession = errors.New("login required")
)

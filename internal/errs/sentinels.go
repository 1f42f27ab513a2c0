// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity or configuration key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRange indicates the (range_value, category) pair already exists.
	ErrDuplicateRange = errors.New("duplicate range")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the per-address request window is exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidCategory indicates a category outside favorites/recents/special.
	ErrInvalidCategory = errors.New("invalid category")
)

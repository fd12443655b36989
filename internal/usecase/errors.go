package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrMissingIdentifier is the only fatal normalization error: without a
	// match id there is nothing to key the record on.
	ErrMissingIdentifier = errors.New("match identifier missing")
)

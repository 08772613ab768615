package utils

import "errors"

// Outcomes the handlers branch on. Anything else coming out of a repository
// function is an unexpected failure and becomes a 500 at the boundary.
var (
	// ErrNotFound means the referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername means the users.username unique constraint would
	// be violated. Nothing is committed when this is returned.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, so a caller cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the session is missing or does not match the
	// resource owner. Distinct from ErrNotFound.
	ErrUnauthorized = errors.New("unauthorized")
)

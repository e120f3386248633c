// Package common contains shared constants and sentinel errors used across
// gophnotes components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Credential errors.
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors.
	ErrNoSession = errors.New("no active session")

	// Validation errors.
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrEmptyTitle    = errors.New("title must not be empty")
	ErrTitleTooLong  = errors.New("title too long")

	// Note errors.
	ErrNoteNotFound = errors.New("note not found")
)

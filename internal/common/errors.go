// Package common defines sentinel errors shared between the service and
// HTTP layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Registration / profile validation errors.
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrWeakPassword      = errors.New("password must be at least 6 characters")

	// Auth errors. Wrong password and unknown identifier both collapse
	// into ErrInvalidCredentials so callers cannot probe for accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

package services

import "errors"

// Sentinel errors surfaced to the presentation layer. Everything else that
// escapes a service is a storage failure wrapped with context.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid password")
)

// Package login provides HTTP handlers and helpers for user authentication.
//
// This file defines exported error values used throughout the login flow.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted login form cannot be parsed
	// or fails validation.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidCredentials is returned when the provided username and/or password
	// are not valid.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled is returned when the user exists but was deactivated.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrInternalServerError is returned for unexpected failures during the login
	// process.
	ErrInternalServerError = errors.New("internal server error")
)

package auth

import "errors"

var (
	// ErrUserNameOrEmailExists is returned when attempting to create a user with a username or email that already exists.
	ErrUserNameOrEmailExists = errors.New("user with username or email already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoleNotFound is returned when a role name does not exist.
	ErrRoleNotFound = errors.New("role not found")
)

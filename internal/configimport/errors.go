package configimport

import "errors"

var (
	// ErrInvalidDocument is returned when an import document fails validation.
	ErrInvalidDocument = errors.New("invalid settings import document")

	// ErrUnknownBundle is returned when an imported definition names a bundle that is not configured.
	ErrUnknownBundle = errors.New("unknown bundle")
)

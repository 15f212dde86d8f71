package registry

import "errors"

var (
	// ErrInvalidAggregate is returned when the stored aggregate cannot be decoded.
	ErrInvalidAggregate = errors.New("invalid settings aggregate")
)

package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrUnsupportedLogLevel is returned when Log.LogLevel is not a zerolog level name.
	ErrUnsupportedLogLevel = errors.New("config Log.LogLevel is not supported")

	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")
)

// ErrorHandler is installed as zerolog.ErrorHandler. Events that fail to
// write are dropped and reported on stderr.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "gosettings-admin: dropped log event: %v\n", err)
}

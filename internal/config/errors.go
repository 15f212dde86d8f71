package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if config db.gormEngine is not mysql, postgres or sqlite.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrUnknownFieldType error if a bundle field uses an unsupported type.
	ErrUnknownFieldType = errors.New("toml config settings bundle field type is not supported")

	// ErrEmptyFieldName error if a bundle field has no name.
	ErrEmptyFieldName = errors.New("toml config settings bundle field name can not be empty")
)

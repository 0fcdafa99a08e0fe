package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrBlobEndpointEmpty error if a blob token is set without a blob endpoint.
	ErrBlobEndpointEmpty = errors.New("toml config storage.blob.endpoint can not be empty when a blob token is set")
)

package store

import (
	"errors"
)

var (
	// ErrNameRequired is returned when a dealer is created without a name.
	ErrNameRequired = errors.New("dealer name is required")

	// ErrDealerExists is returned when a dealer with the same name
	// (case-insensitive) already exists.
	ErrDealerExists = errors.New("a dealer with this name already exists")

	// ErrBadSnapshot is returned when loaded snapshot bytes do not start
	// with the expected magic header.
	ErrBadSnapshot = errors.New("snapshot is missing the magic header")
)

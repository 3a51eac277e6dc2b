package config

import "errors"

var (
	ErrParsingConfig = errors.New("config.parse")
	// ErrNilPointer is returned when Load is given a nil target.
	ErrNilPointer = errors.New("config.nil_target")
)

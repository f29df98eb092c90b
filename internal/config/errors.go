package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidValue indicates a setting has the wrong type.
	ErrInvalidValue = errors.New("invalid setting value")

	// ErrNotLoaded indicates Reload was called before Load.
	ErrNotLoaded = errors.New("configuration not loaded")
)

// DecodeError reports a setting that could not be decoded from the merged
// sources.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding settings from %s: %v", e.Source, e.Err)
}

// Unwrap returns ErrInvalidValue and the decoder error.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrInvalidValue, e.Err}
}

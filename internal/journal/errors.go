package journal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned when a record cannot be encoded or decoded.
	ErrInvalidRecord = errors.New("invalid journal record")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("journal store closed")
)

// ReplayError reports the record that stopped a replay.
type ReplayError struct {
	Index  int
	Record Record
	Err    error
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("replaying record %d (%s): %v", e.Index, e.Record.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReplayError) Unwrap() error {
	return e.Err
}

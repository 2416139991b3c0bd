package engine

import (
	"github.com/dshills/undocalc/internal/engine/history"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithInitialValue sets the starting value of the accumulator.
func WithInitialValue(v int64) Option {
	return func(e *Engine) {
		e.initValue = v
	}
}

// WithMaxUndoEntries sets the maximum number of history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithRedoBoundary sets the redo boundary policy.
func WithRedoBoundary(b history.RedoBoundary) Option {
	return func(e *Engine) {
		e.boundary = b
	}
}

// WithReadOnly makes the engine read-only.
func WithReadOnly(readOnly bool) Option {
	return func(e *Engine) {
		e.readOnly = readOnly
	}
}

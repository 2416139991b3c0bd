package engine

import (
	"sync"

	"github.com/dshills/undocalc/internal/engine/accumulator"
	"github.com/dshills/undocalc/internal/engine/history"
)

// Re-export commonly used types for convenience.
type (
	// Operator is an arithmetic operator.
	Operator = accumulator.Operator

	// Change describes one accumulator mutation.
	Change = accumulator.Change

	// Observer receives accumulator changes.
	Observer = accumulator.Observer

	// Command is an undoable command.
	Command = history.Command

	// OperationInfo describes one history entry.
	OperationInfo = history.OperationInfo
)

// Engine combines an accumulator and its command history.
// It is safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	acc     *accumulator.Accumulator
	history *history.History

	// Configuration captured from options
	initValue      int64
	maxUndoEntries int
	boundary       history.RedoBoundary
	readOnly       bool
}

// New creates a new engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxUndoEntries: DefaultMaxUndoEntries,
		boundary:       history.BoundaryReference,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.acc = accumulator.New(e.initValue)
	e.history = history.New(e.acc,
		history.WithMaxEntries(e.maxUndoEntries),
		history.WithRedoBoundary(e.boundary),
	)
	return e
}

// ============================================================================
// Read Operations
// ============================================================================

// Value returns the current accumulator value.
func (e *Engine) Value() int64 {
	return e.acc.Value()
}

// Cursor returns the history cursor.
func (e *Engine) Cursor() int {
	return e.history.Cursor()
}

// Len returns the number of history entries.
func (e *Engine) Len() int {
	return e.history.Len()
}

// Entries returns info about every history entry, oldest first.
func (e *Engine) Entries() []OperationInfo {
	return e.history.Entries()
}

// History returns the underlying command history.
func (e *Engine) History() *history.History {
	return e.history
}

// Accumulator returns the underlying accumulator.
func (e *Engine) Accumulator() *accumulator.Accumulator {
	return e.acc
}

// IsReadOnly returns true if the engine rejects mutations.
func (e *Engine) IsReadOnly() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.readOnly
}

// SetReadOnly sets the read-only state.
func (e *Engine) SetReadOnly(readOnly bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.readOnly = readOnly
}

// ============================================================================
// Observers
// ============================================================================

// Attach registers an observer for accumulator changes.
func (e *Engine) Attach(o Observer) {
	e.acc.Attach(o)
}

// Detach removes an observer.
func (e *Engine) Detach(o Observer) bool {
	return e.acc.Detach(o)
}

// ============================================================================
// Compute / Undo / Redo
// ============================================================================

// Compute applies op and operand and records the step in history.
func (e *Engine) Compute(op Operator, operand int64) error {
	if e.IsReadOnly() {
		return ErrReadOnly
	}
	return e.history.Compute(op, operand)
}

// ComputeSymbol parses an operator symbol and computes with it.
func (e *Engine) ComputeSymbol(symbol string, operand int64) error {
	op, err := accumulator.ParseOperator(symbol)
	if err != nil {
		return err
	}
	return e.Compute(op, operand)
}

// Execute runs an arbitrary command and records it in history.
func (e *Engine) Execute(cmd Command) error {
	if e.IsReadOnly() {
		return ErrReadOnly
	}
	return e.history.Execute(cmd)
}

// Undo undoes up to levels entries and returns how many were undone.
func (e *Engine) Undo(levels int) (int, error) {
	if e.IsReadOnly() {
		return 0, ErrReadOnly
	}
	return e.history.Undo(levels)
}

// Redo redoes up to levels entries and returns how many were redone.
func (e *Engine) Redo(levels int) (int, error) {
	if e.IsReadOnly() {
		return 0, ErrReadOnly
	}
	return e.history.Redo(levels)
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of available undo operations.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of available redo operations.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// BeginUndoGroup starts a new undo group.
// All computes until EndUndoGroup will be undone as a single unit.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup ends the current undo group.
func (e *Engine) EndUndoGroup() error {
	return e.history.EndGroup()
}

// CancelUndoGroup cancels the current undo group and reverses its computes.
func (e *Engine) CancelUndoGroup() error {
	return e.history.CancelGroup()
}

// ClearHistory removes all history entries.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// Reset clears history and sets the accumulator to v without notifying
// observers.
func (e *Engine) Reset(v int64) error {
	if e.IsReadOnly() {
		return ErrReadOnly
	}
	e.history.Clear()
	e.acc.Reset(v)
	return nil
}

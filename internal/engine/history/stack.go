package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

// DefaultMaxEntries is the log size used when none is configured.
const DefaultMaxEntries = 1000

// RedoBoundary selects how far Redo may walk toward the end of the log.
type RedoBoundary int

const (
	// BoundaryReference stops redo one entry before the end of the log.
	// After a full undo the most recent command can never be redone.
	BoundaryReference RedoBoundary = iota

	// BoundaryExact allows redo up to the end of the log.
	BoundaryExact
)

// String returns the configuration name of the boundary.
func (b RedoBoundary) String() string {
	switch b {
	case BoundaryReference:
		return "reference"
	case BoundaryExact:
		return "exact"
	default:
		return "unknown"
	}
}

// ParseRedoBoundary parses "reference" or "exact". Anything else
// yields BoundaryReference and false.
func ParseRedoBoundary(s string) (RedoBoundary, bool) {
	switch s {
	case "reference", "":
		return BoundaryReference, s != ""
	case "exact":
		return BoundaryExact, true
	default:
		return BoundaryReference, false
	}
}

// logEntry wraps a command with metadata.
type logEntry struct {
	command   Command
	timestamp time.Time
}

// OperationInfo describes one log entry.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
	Applied     bool // entry lies before the cursor
}

// Option configures a History.
type Option func(*History)

// WithMaxEntries limits the number of log entries kept.
func WithMaxEntries(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.maxEntries = n
		}
	}
}

// WithRedoBoundary sets the redo boundary policy.
func WithRedoBoundary(b RedoBoundary) Option {
	return func(h *History) {
		h.boundary = b
	}
}

// History is the invoker: an ordered command log and a cursor into it.
//
// Mutating calls (Compute, Execute, Undo, Redo, grouping, Clear) are
// serialized. Read accessors may be called from accumulator observers while
// a mutation is in progress; calling a mutating method from an observer
// deadlocks.
type History struct {
	exec sync.Mutex // serializes mutating operations
	mu   sync.Mutex // guards the fields below

	acc    *accumulator.Accumulator
	log    []*logEntry
	cursor int

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []Command

	// Configuration
	maxEntries int
	boundary   RedoBoundary
}

// New creates a history that computes against acc.
func New(acc *accumulator.Accumulator, opts ...Option) *History {
	h := &History{
		acc:        acc,
		maxEntries: DefaultMaxEntries,
		boundary:   BoundaryReference,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Accumulator returns the receiver the history computes against.
func (h *History) Accumulator() *accumulator.Accumulator {
	return h.acc
}

// Compute applies op and operand to the accumulator and records the step.
func (h *History) Compute(op accumulator.Operator, operand int64) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %v", accumulator.ErrInvalidOperator, op)
	}
	return h.Execute(NewCalculatorCommand(h.acc, op, operand))
}

// Execute runs a command and records it at the cursor.
// Any entries after the cursor are discarded. Nothing is recorded on error.
func (h *History) Execute(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}

	h.exec.Lock()
	defer h.exec.Unlock()

	if err := cmd.Execute(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return nil
	}
	h.pushLocked(cmd)
	return nil
}

// pushLocked places cmd at the cursor without acquiring the lock.
func (h *History) pushLocked(cmd Command) {
	// Drop the redo tail
	for i := h.cursor; i < len(h.log); i++ {
		h.log[i] = nil
	}
	h.log = h.log[:h.cursor]

	h.log = append(h.log, &logEntry{
		command:   cmd,
		timestamp: time.Now(),
	})
	h.cursor++

	h.trimLocked()
}

// trimLocked enforces maxEntries by removing the oldest entries.
func (h *History) trimLocked() {
	if len(h.log) <= h.maxEntries {
		return
	}
	excess := len(h.log) - h.maxEntries
	h.log = append([]*logEntry(nil), h.log[excess:]...)
	h.cursor -= excess
	if h.cursor < 0 {
		h.cursor = 0
	}
}

// Undo unexecutes up to levels entries before the cursor.
// Stops silently at the start of the log and returns the number of entries
// undone. If an unexecute fails, the cursor stays on that entry and the
// error is returned with the count of entries undone before it.
func (h *History) Undo(levels int) (int, error) {
	h.exec.Lock()
	defer h.exec.Unlock()

	if h.IsGrouping() {
		return 0, ErrGroupOpen
	}

	done := 0
	for i := 0; i < levels; i++ {
		h.mu.Lock()
		if h.cursor == 0 {
			h.mu.Unlock()
			break
		}
		h.cursor--
		entry := h.log[h.cursor]
		h.mu.Unlock()

		if err := entry.command.Unexecute(); err != nil {
			h.mu.Lock()
			h.cursor++
			h.mu.Unlock()
			return done, err
		}
		done++
	}
	return done, nil
}

// Redo executes up to levels entries at the cursor, honoring the redo
// boundary. Stops silently at the boundary and returns the number of
// entries redone.
func (h *History) Redo(levels int) (int, error) {
	h.exec.Lock()
	defer h.exec.Unlock()

	if h.IsGrouping() {
		return 0, ErrGroupOpen
	}

	done := 0
	for i := 0; i < levels; i++ {
		h.mu.Lock()
		if h.cursor >= h.redoLimitLocked() {
			h.mu.Unlock()
			break
		}
		entry := h.log[h.cursor]
		h.cursor++
		h.mu.Unlock()

		if err := entry.command.Execute(); err != nil {
			h.mu.Lock()
			h.cursor--
			h.mu.Unlock()
			return done, err
		}
		done++
	}
	return done, nil
}

// redoLimitLocked returns the cursor position redo may not reach.
func (h *History) redoLimitLocked() int {
	if h.boundary == BoundaryExact {
		return len(h.log)
	}
	return len(h.log) - 1
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.UndoCount() > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.RedoCount() > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// RedoCount returns the number of redo operations available under the
// configured boundary.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.redoLimitLocked() - h.cursor
	if n < 0 {
		return 0
	}
	return n
}

// Cursor returns the current cursor position in [0, Len()].
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Len returns the number of entries in the log.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.log)
}

// Boundary returns the configured redo boundary.
func (h *History) Boundary() RedoBoundary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.boundary
}

// Entries returns info about every log entry, oldest first.
func (h *History) Entries() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.log))
	for i, entry := range h.log {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
			Applied:     i < h.cursor,
		}
	}
	return result
}

// PeekUndo returns info about the next undo operation without performing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor == 0 {
		return OperationInfo{}, false
	}
	entry := h.log[h.cursor-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
		Applied:     true,
	}, true
}

// PeekRedo returns info about the next redo operation without performing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= h.redoLimitLocked() {
		return OperationInfo{}, false
	}
	entry := h.log[h.cursor]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// Clear removes all entries and resets the cursor.
// The accumulator value is left as it is.
func (h *History) Clear() {
	h.exec.Lock()
	defer h.exec.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.log = nil
	h.cursor = 0
	h.grouping = false
	h.groupCmds = nil
}

// SetMaxEntries changes the maximum number of log entries.
// If the log is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.trimLocked()
}

// MaxEntries returns the maximum number of log entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

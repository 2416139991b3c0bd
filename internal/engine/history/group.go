package history

import (
	"errors"
	"fmt"
)

// BeginGroup starts a command group.
// Commands executed while grouping are combined into a single log entry.
func (h *History) BeginGroup(name string) {
	h.exec.Lock()
	defer h.exec.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup finishes a command group.
// All commands since BeginGroup are recorded as one CompoundCommand.
func (h *History) EndGroup() error {
	h.exec.Lock()
	defer h.exec.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return ErrNoGroup
	}

	h.grouping = false

	if len(h.groupCmds) == 0 {
		h.groupCmds = nil
		return nil
	}

	h.pushLocked(NewCompoundCommand(h.groupName, h.groupCmds...))
	h.groupCmds = nil
	return nil
}

// CancelGroup closes a command group without recording it and reverses the
// commands it already applied, newest first. If a reversal fails, the ones
// already reversed are re-applied and the group stays open with all of its
// commands applied, so EndGroup can still record it.
func (h *History) CancelGroup() error {
	h.exec.Lock()
	defer h.exec.Unlock()

	h.mu.Lock()
	if !h.grouping {
		h.mu.Unlock()
		return ErrNoGroup
	}
	group := NewCompoundCommand(h.groupName, h.groupCmds...)
	h.mu.Unlock()

	if err := group.Unexecute(); err != nil {
		return fmt.Errorf("cancel group: %w", err)
	}

	h.mu.Lock()
	h.grouping = false
	h.groupCmds = nil
	h.mu.Unlock()
	return nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// GroupScope provides a convenient way to group commands using defer.
// Usage:
//
//	func applyTax(h *History) {
//	    defer h.GroupScope("tax").End()
//	    // ... multiple computes ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		_ = g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope and reverses its commands.
func (g *GroupScope) Cancel() error {
	if !g.active {
		return nil
	}
	if err := g.history.CancelGroup(); err != nil {
		return err
	}
	g.active = false
	return nil
}

// Transaction executes a function within a grouped undo context.
// If the function returns an error, the group is cancelled and its
// commands are reversed. Otherwise, the group is ended normally.
// A group that cannot be reversed is recorded instead.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		if cerr := h.CancelGroup(); cerr != nil {
			_ = h.EndGroup()
			return errors.Join(err, cerr)
		}
		return err
	}

	return h.EndGroup()
}

// Checkpoint represents a cursor position that can be returned to.
type Checkpoint struct {
	cursor int
}

// CreateCheckpoint creates a checkpoint at the current cursor.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{cursor: h.cursor}
}

// UndoToCheckpoint undoes all entries applied since the checkpoint.
func (h *History) UndoToCheckpoint(cp Checkpoint) error {
	levels := h.Cursor() - cp.cursor
	if levels <= 0 {
		return nil
	}
	_, err := h.Undo(levels)
	return err
}

// RedoToCheckpoint redoes entries until the cursor reaches the checkpoint
// or the redo boundary, whichever comes first.
func (h *History) RedoToCheckpoint(cp Checkpoint) error {
	levels := cp.cursor - h.Cursor()
	if levels <= 0 {
		return nil
	}
	_, err := h.Redo(levels)
	return err
}

package history

import "errors"

// Common errors for history operations.
var (
	// ErrGroupOpen is returned by Undo and Redo while a command group is open.
	ErrGroupOpen = errors.New("command group is open")

	// ErrNoGroup is returned when ending or cancelling a group that was never begun.
	ErrNoGroup = errors.New("no command group is open")

	// ErrNilCommand is returned when a nil command is executed.
	ErrNilCommand = errors.New("command cannot be nil")
)

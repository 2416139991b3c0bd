package script

import (
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

var (
	// ErrRunnerClosed is returned when running a script on a closed runner.
	ErrRunnerClosed = errors.New("script runner is closed")

	// ErrNilCalculator is returned when NewRunner gets no calculator.
	ErrNilCalculator = errors.New("script runner needs a calculator")
)

// Error reports a failed script.
type Error struct {
	// Source is the file path or "<string>".
	Source string

	// Err is the error reported by the Lua runtime.
	Err error

	// Cause is the calculator error that raised the Lua error, if any.
	Cause error
}

// Error implements the error interface. Lua messages usually carry their
// own source position, in which case Source is not repeated. The Lua stack
// trace is left out.
func (e *Error) Error() string {
	msg := fmt.Sprint(e.Err)
	var apiErr *lua.ApiError
	if errors.As(e.Err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	if strings.HasPrefix(msg, e.Source) {
		return "script " + msg
	}
	return fmt.Sprintf("script %s: %s", e.Source, msg)
}

// Unwrap exposes the calculator error when there is one, so callers can
// match domain errors with errors.Is.
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Err
}

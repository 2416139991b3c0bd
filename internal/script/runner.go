// Package script runs Lua scripts that drive the calculator.
//
// A script sees a small global API:
//
//	compute(op, n)      apply "+", "-", "*" or "/" with operand n; returns the value
//	undo([levels])      undo levels steps (default 1); returns steps undone
//	redo([levels])      redo levels steps (default 1); returns steps redone
//	value()             current accumulator value
//	cursor()            current history cursor
//	begin_group(name)   start an undo group
//	end_group()         close the undo group
//
// Only the base, table, string and math libraries are opened; file loading
// functions are removed.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

// DefaultTimeout bounds one script run.
const DefaultTimeout = 5 * time.Second

// Calculator is the surface scripts drive.
type Calculator interface {
	Compute(ctx context.Context, op accumulator.Operator, operand int64) error
	Undo(ctx context.Context, levels int) (int, error)
	Redo(ctx context.Context, levels int) (int, error)
	Value() int64
	Cursor() int
	BeginGroup(name string)
	EndGroup() error
	CancelGroup() error
}

// Runner owns one sandboxed Lua state bound to a Calculator.
// gopher-lua states are not goroutine-safe; Runner serializes runs.
type Runner struct {
	mu sync.Mutex
	L  *lua.LState

	calc    Calculator
	out     io.Writer
	timeout time.Duration

	// Per-run state read by the bindings.
	ctx       context.Context
	lastErr   error
	groupOpen bool

	closed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput redirects Lua print to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a runner with the calculator API installed.
func NewRunner(calc Calculator, opts ...Option) (*Runner, error) {
	if calc == nil {
		return nil, ErrNilCalculator
	}

	r := &Runner{
		calc:    calc,
		out:     os.Stdout,
		timeout: DefaultTimeout,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.install()
	return r, nil
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// RunString executes code.
func (r *Runner) RunString(ctx context.Context, code string) error {
	return r.run(ctx, "<string>", func(L *lua.LState) error {
		return L.DoString(code)
	})
}

// RunFile executes the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return r.run(ctx, path, func(L *lua.LState) error {
		fn, err := L.Load(bytes.NewReader(src), path)
		if err != nil {
			return err
		}
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	})
}

func (r *Runner) run(ctx context.Context, source string, fn func(L *lua.LState) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRunnerClosed
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.ctx = ctx
	r.lastErr = nil
	r.groupOpen = false
	r.L.SetContext(ctx)
	defer func() {
		r.L.RemoveContext()
		r.ctx = context.Background()
	}()

	defer func() {
		if rec := recover(); rec != nil {
			err = &Error{Source: source, Err: fmt.Errorf("lua panic: %v", rec), Cause: r.lastErr}
		}
		err = r.closeGroup(err)
	}()

	if runErr := fn(r.L); runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && r.lastErr == nil {
			return &Error{Source: source, Err: runErr, Cause: ctxErr}
		}
		return &Error{Source: source, Err: runErr, Cause: r.lastErr}
	}
	return nil
}

// closeGroup settles a group the script left open: it is recorded when the
// run succeeded and reversed when it failed. A group that cannot be reversed
// is recorded so the session is never left grouping.
func (r *Runner) closeGroup(runErr error) error {
	if !r.groupOpen {
		return runErr
	}
	r.groupOpen = false

	if runErr == nil {
		return r.calc.EndGroup()
	}
	if err := r.calc.CancelGroup(); err != nil {
		return errors.Join(runErr, err, r.calc.EndGroup())
	}
	return runErr
}

// Close releases the Lua state.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}

package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/undocalc/internal/engine/accumulator"
	"github.com/dshills/undocalc/internal/script"
)

// DemoStep is one action of the built-in demo.
type DemoStep struct {
	Kind    string // "compute", "undo" or "redo"
	Op      accumulator.Operator
	Operand int64
	Levels  int
}

// DemoScript is the session run when no script is configured:
// four computes, then undo 4 and redo 3.
var DemoScript = []DemoStep{
	{Kind: "compute", Op: accumulator.Add, Operand: 100},
	{Kind: "compute", Op: accumulator.Subtract, Operand: 50},
	{Kind: "compute", Op: accumulator.Multiply, Operand: 10},
	{Kind: "compute", Op: accumulator.Divide, Operand: 2},
	{Kind: "undo", Levels: 4},
	{Kind: "redo", Levels: 3},
}

// RunDemo executes steps in order and stops at the first error.
func (app *Application) RunDemo(ctx context.Context, steps []DemoStep) error {
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch s.Kind {
		case "compute":
			err = app.Compute(ctx, s.Op, s.Operand)
		case "undo":
			_, err = app.Undo(ctx, s.Levels)
		case "redo":
			_, err = app.Redo(ctx, s.Levels)
		default:
			err = fmt.Errorf("unknown demo step %q", s.Kind)
		}
		if err != nil {
			return fmt.Errorf("demo step %d: %w", i+1, err)
		}
	}
	return nil
}

// RunScript runs the Lua script at path against this session.
func (app *Application) RunScript(ctx context.Context, path string) error {
	runner, err := script.NewRunner(app, script.WithOutput(app.console.out))
	if err != nil {
		return err
	}
	defer runner.Close()

	app.logger.Info("running script", zap.String("path", path))
	return runner.RunFile(ctx, path)
}

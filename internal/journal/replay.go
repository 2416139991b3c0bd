package journal

import (
	"context"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

// Target is the calculator surface a replay drives.
type Target interface {
	Compute(op accumulator.Operator, operand int64) error
	Undo(levels int) (int, error)
	Redo(levels int) (int, error)
	ClearHistory()
	BeginUndoGroup(name string)
	EndUndoGroup() error
	CancelUndoGroup() error
}

// Replay loads every record from store and applies it to target in order.
// It stops at the first failing record and returns the number applied.
func Replay(ctx context.Context, store Store, target Target) (int, error) {
	records, err := store.Records(ctx)
	if err != nil {
		return 0, err
	}
	return Apply(ctx, records, target)
}

// Apply runs records against target in order.
func Apply(ctx context.Context, records []Record, target Target) (int, error) {
	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		var err error
		switch r.Kind {
		case KindCompute:
			err = target.Compute(r.Op, r.Operand)
		case KindUndo:
			_, err = target.Undo(r.Levels)
		case KindRedo:
			_, err = target.Redo(r.Levels)
		case KindClear:
			target.ClearHistory()
		case KindGroupBegin:
			target.BeginUndoGroup(r.Name)
		case KindGroupEnd:
			err = target.EndUndoGroup()
		case KindGroupCancel:
			err = target.CancelUndoGroup()
		default:
			err = ErrInvalidRecord
		}
		if err != nil {
			return i, &ReplayError{Index: i, Record: r, Err: err}
		}
	}
	return len(records), nil
}

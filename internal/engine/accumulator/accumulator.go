package accumulator

import (
	"fmt"
	"sync"
)

// Change describes one successful mutation of an Accumulator.
type Change struct {
	Value   int64    // value after the step
	Op      Operator // operator that produced Value
	Operand int64
}

// String formats the change the way the console reports it.
func (c Change) String() string {
	return fmt.Sprintf("Current value = %3d (following %s %d)", c.Value, c.Op, c.Operand)
}

// Accumulator holds one integer value mutated only through Apply.
// It is safe for concurrent use; observers are notified outside the lock.
type Accumulator struct {
	mu        sync.Mutex
	value     int64
	observers []Observer
}

// New creates an accumulator holding the given initial value.
func New(initial int64) *Accumulator {
	return &Accumulator{value: initial}
}

// Value returns the current value.
func (a *Accumulator) Value() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Reset replaces the current value without notifying observers.
func (a *Accumulator) Reset(v int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = v
}

// Apply mutates the value with op and operand and reports the result.
// On error the value is unchanged and no observer is notified.
func (a *Accumulator) Apply(op Operator, operand int64) error {
	a.mu.Lock()
	next, err := compute(a.value, op, operand)
	if err != nil {
		a.mu.Unlock()
		return err
	}
	a.value = next
	observers := a.snapshotObservers()
	a.mu.Unlock()

	change := Change{Value: next, Op: op, Operand: operand}
	for _, o := range observers {
		o.Notify(change)
	}
	return nil
}

func compute(value int64, op Operator, operand int64) (int64, error) {
	switch op {
	case Add:
		return value + operand, nil
	case Subtract:
		return value - operand, nil
	case Multiply:
		return value * operand, nil
	case Divide:
		if operand == 0 {
			return value, &DomainError{Op: op, Value: value, Operand: operand, Err: ErrDivisionByZero}
		}
		return value / operand, nil
	default:
		return value, fmt.Errorf("%w: %d", ErrInvalidOperator, uint8(op))
	}
}

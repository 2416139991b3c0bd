package accumulator

import (
	"errors"
	"fmt"
)

// Errors returned by accumulator operations.
var (
	// ErrInvalidOperator indicates an operator symbol outside + - * /.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrDivisionByZero indicates a division with a zero operand.
	ErrDivisionByZero = errors.New("division by zero")
)

// DomainError reports an arithmetic step that has no defined result.
type DomainError struct {
	Op      Operator
	Value   int64 // accumulator value before the step
	Operand int64
	Err     error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%d %s %d: %v", e.Value, e.Op, e.Operand, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

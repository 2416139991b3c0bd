package history

import (
	"fmt"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

// Inverse returns the operator that undoes op: + and - swap, * and / swap.
func Inverse(op accumulator.Operator) (accumulator.Operator, error) {
	switch op {
	case accumulator.Add:
		return accumulator.Subtract, nil
	case accumulator.Subtract:
		return accumulator.Add, nil
	case accumulator.Multiply:
		return accumulator.Divide, nil
	case accumulator.Divide:
		return accumulator.Multiply, nil
	default:
		return 0, fmt.Errorf("%w: %v", accumulator.ErrInvalidOperator, op)
	}
}

package accumulator

import "fmt"

// Operator is one of the four arithmetic operators an Accumulator accepts.
// The zero value is not a valid operator.
type Operator uint8

const (
	// Add adds the operand to the value.
	Add Operator = iota + 1
	// Subtract subtracts the operand from the value.
	Subtract
	// Multiply multiplies the value by the operand.
	Multiply
	// Divide divides the value by the operand, truncating toward zero.
	Divide
)

// Operators lists every valid operator in declaration order.
var Operators = []Operator{Add, Subtract, Multiply, Divide}

// String returns the operator symbol.
func (op Operator) String() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return fmt.Sprintf("Operator(%d)", uint8(op))
	}
}

// Valid reports whether op is one of the four supported operators.
func (op Operator) Valid() bool {
	return op >= Add && op <= Divide
}

// ParseOperator converts a symbol to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return Add, nil
	case "-":
		return Subtract, nil
	case "*":
		return Multiply, nil
	case "/":
		return Divide, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (op Operator) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOperator, uint8(op))
	}
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *Operator) UnmarshalText(text []byte) error {
	parsed, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

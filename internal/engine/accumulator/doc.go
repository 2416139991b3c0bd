// Package accumulator provides the receiver side of the calculator engine.
//
// An Accumulator holds a single signed integer that is only ever changed by
// applying an Operator and an operand to it:
//
//	acc := accumulator.New(0)
//	acc.Apply(accumulator.Add, 100)      // 100
//	acc.Apply(accumulator.Multiply, 10)  // 1000
//
// # Operators
//
// Operators form a closed set (Add, Subtract, Multiply, Divide). Symbols from
// user input are converted with ParseOperator; anything outside the set is
// rejected with ErrInvalidOperator.
//
// # Arithmetic
//
// Arithmetic is integer arithmetic with truncating division. Dividing by zero
// returns a *DomainError and leaves the value untouched.
//
// # Observers
//
// Every successful Apply reports a Change to the attached observers, in the
// order they were attached:
//
//	acc.Attach(accumulator.ObserverFunc(func(c accumulator.Change) {
//	    fmt.Println(c.Value)
//	}))
package accumulator

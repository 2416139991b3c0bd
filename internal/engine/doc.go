// Package engine provides the calculator engine for undocalc.
//
// The engine package serves as the main facade, combining the accumulator
// (receiver) and the command history (invoker) into one API.
//
// # Architecture
//
// The engine is built on two sub-packages:
//
//   - accumulator: the integer value, operators, and change observers
//   - history: command-based undo/redo over an ordered log with a cursor
//
// # Basic Usage
//
//	e := engine.New()
//
//	e.Compute(accumulator.Add, 100)     // 100
//	e.Compute(accumulator.Subtract, 50) // 50
//
//	e.Undo(1) // 100
//	e.Undo(1) // 0
//
// Operators may also be given as symbols:
//
//	e.ComputeSymbol("*", 10)
//
// # Redo Boundary
//
// Redo follows the history's boundary policy. The default reproduces a
// calculator whose redo stops one entry before the end of the log; pass
// WithRedoBoundary(history.BoundaryExact) to redo all the way.
//
// # Read-Only Mode
//
// An engine created WithReadOnly(true) rejects every mutation with
// ErrReadOnly while still serving reads.
package engine

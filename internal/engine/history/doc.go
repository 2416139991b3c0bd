// Package history provides undo/redo for the calculator engine.
//
// The history system uses the Command pattern to encapsulate arithmetic steps,
// enabling them to be executed, unexecuted, and executed again. Key concepts:
//
// # Commands
//
// Commands implement the Command interface with Execute and Unexecute methods.
// Built-in commands include:
//   - CalculatorCommand: apply one operator and operand to an accumulator
//   - CompoundCommand: group multiple commands as one undo unit
//
// Every operator has an inverse (+ and -, * and /), so a CalculatorCommand
// unexecutes by applying the inverse operator with the same operand.
//
// # Command Log
//
// The History type keeps an ordered log of commands and a cursor into it.
// Entries before the cursor are applied; entries at or after it can be redone:
//
//	h := history.New(acc)
//
//	h.Compute(accumulator.Add, 100)
//	h.Compute(accumulator.Multiply, 10)
//
//	h.Undo(2) // back to the starting value
//	h.Redo(1) // +100 again
//
// Undo and Redo take a level count and stop silently at the ends of the log.
//
// # Redo Boundary
//
// By default redo stops one entry short of the end of the log, which matches
// the calculator this engine reproduces: after undoing everything, the most
// recent compute cannot be redone. WithRedoBoundary(BoundaryExact) allows
// redo up to the end of the log.
//
// # Command Grouping
//
// Multiple computes can be grouped as a single undo unit:
//
//	h.BeginGroup("tax")
//	h.Compute(accumulator.Multiply, 108)
//	h.Compute(accumulator.Divide, 100)
//	h.EndGroup()
//
// Now both steps undo together with Undo(1).
package history

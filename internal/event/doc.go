// Package event provides a synchronous publish/subscribe bus for calculator
// state changes.
//
// Events are published by the application whenever the accumulator changes or
// the history moves. Subscribers register a handler for a topic pattern and
// receive every matching event in the publisher's goroutine.
//
// # Topics
//
// Topics use dot notation. Patterns may contain wildcards:
//
//   - "history.*" matches "history.undone" and "history.redone"
//   - "**" matches every topic
//
// # Handler Failures
//
// A handler that returns an error or panics does not stop delivery to the
// remaining subscribers. Failures are collected and returned from Publish as
// *HandlerError and *PanicError values joined together.
package event

// Package state holds the client-side state containers: AuthStore for the
// signed-in session and TodoStore for the cached page of todos.
//
// Stores are plain objects built with their dependencies. They are safe for
// concurrent use and expose their state only through copies.
package state

import "fmt"

// Status is the phase of an operation.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of the latest run of one operation. Value is only
// present when Succeeded, the error message only when Failed.
type Result[T any] struct {
	status Status
	value  T
	err    string
}

func idle[T any]() Result[T] { return Result[T]{} }

func pending[T any]() Result[T] { return Result[T]{status: StatusPending} }

func succeeded[T any](v T) Result[T] { return Result[T]{status: StatusSucceeded, value: v} }

func failed[T any](msg string) Result[T] { return Result[T]{status: StatusFailed, err: msg} }

func (r Result[T]) Status() Status { return r.status }

func (r Result[T]) Pending() bool { return r.status == StatusPending }

// Value returns the result value and true if the operation succeeded.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.status == StatusSucceeded
}

// Err returns the error message and true if the operation failed.
func (r Result[T]) Err() (string, bool) {
	return r.err, r.status == StatusFailed
}

// Package result provides a generic success-or-failure value used by the
// response pipeline and by every asynchronous session call.
package result

import "errors"

// ErrNilFailure is carried by a Result built with Failure(nil), so that a
// failed Result always has a non-nil error.
var ErrNilFailure = errors.New("result: failure without error")

// Result holds either a value or an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps v as a successful Result.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps err as a failed Result.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrNilFailure
	}
	return Result[T]{err: err}
}

// From builds a Result from the usual (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// IsSuccess reports whether the Result holds a value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the success value, or the zero value of T on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure error, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Get unpacks the Result into the usual (value, error) pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Then runs f on the value of a successful Result. A failed Result is passed
// through with its error unchanged and f is not called.
func Then[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}
	return f(r.value)
}

// Map applies an infallible transformation to a successful Result.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}
	return Success(f(r.value))
}

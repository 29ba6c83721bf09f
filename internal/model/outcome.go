package model

import "fmt"

// Outcome is the tagged result of an external call: exactly one of Value or Err is meaningful.
// Callers branch on OK() to pick fallback data instead of relying on panics or sentinel values.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Success wraps a value
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Failure wraps an error
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		err = fmt.Errorf("unspecified failure")
	}
	return Outcome[T]{Err: err}
}

// OK reports whether the outcome is a success
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Reason returns the failure reason, or "" on success
func (o Outcome[T]) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Capture runs fn and converts both errors and panics into an Outcome
func Capture[T any](fn func() (T, error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure[T](fmt.Errorf("panic: %v", r))
		}
	}()
	v, err := fn()
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

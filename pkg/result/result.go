// Package result provides a value-or-error container and a helper that
// turns a failing operation into a Result instead of propagating it.
package result

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrPanic is wrapped by the error of a Result produced from a recovered panic.
	ErrPanic = errors.New("operation panicked")

	errMissing = errors.New("result error not set")
)

// Result holds either a value or an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err returns a failed Result. A nil err is replaced so the Result still
// reports a failure.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = errMissing
	}
	return Result[T]{err: err}
}

// IsOk reports whether the Result holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Value returns the value, or the zero value of T on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Get returns the Result as a Go value/error pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Capture runs fn and converts its outcome into a Result. Failures,
// including panics, are logged at error level and never propagated.
func Capture[T any](logger zerolog.Logger, op string, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Err[T](fmt.Errorf("%s: %w: %v", op, ErrPanic, p))
			logger.Error().Err(res.err).Str("op", op).Msg("operation failed")
		}
	}()

	v, err := fn()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("operation failed")
		return Err[T](err)
	}
	return Ok(v)
}

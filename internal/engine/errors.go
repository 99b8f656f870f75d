package engine

import (
	"errors"
	"fmt"
)

// ValidationError rejects malformed input: too few holologue items, a bond
// referencing a missing input, an empty title. At most one terminal
// *_failed event is recorded; nothing else changes.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidStateError rejects an operation attempted on an object in the
// wrong state, before any event is appended.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// IsInvalidState reports whether err is (or wraps) an InvalidStateError.
func IsInvalidState(err error) bool {
	var ie *InvalidStateError
	return errors.As(err, &ie)
}

// ExecutionError reports a synthesis failure after the spend was recorded.
// The refund delta and the failure event are already in the log when one of
// these reaches the caller.
type ExecutionError struct {
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsExecution reports whether err is (or wraps) an ExecutionError.
func IsExecution(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

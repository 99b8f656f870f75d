package store

import (
	"errors"
	"fmt"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// AppendError reports a failed write to the event log. The in-flight
// operation must be abandoned when one occurs; nothing after the failed
// append may be written.
type AppendError struct {
	Name qdpi.Name
	Err  error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("append %s: %v", e.Name, e.Err)
}

func (e *AppendError) Unwrap() error { return e.Err }

// IsAppendError reports whether err is (or wraps) an AppendError.
func IsAppendError(err error) bool {
	var ae *AppendError
	return errors.As(err, &ae)
}

// NotFoundError reports a lookup for an object id that has no snapshot.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

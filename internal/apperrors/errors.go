package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Errors of this class are recoverable by the caller correcting its input.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that an operation violates the current state of the
// resource, e.g. posting an entry that is no longer a draft. Not retryable.
var ErrConflict = errors.New("operation conflicts with resource state")

// ErrLockTimeout indicates that a write could not acquire its row locks
// within the configured bound. The operation had no effect and is safe to
// retry with backoff.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// ErrConsistency indicates a violated structural invariant, e.g. a trial
// balance that does not balance. These point at engine defects, never at bad
// input, and must be escalated rather than retried.
var ErrConsistency = errors.New("consistency invariant violated")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries a classification code alongside a message and the
// underlying cause. Repositories use it to wrap driver-level failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping an underlying error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

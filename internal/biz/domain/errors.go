package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers branch on these with errors.Is/errors.As;
// everything else is a plain wrapped error.
var (
	// ErrValidation marks malformed input to a pipeline entry point.
	// Rejected without side effects.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks a duplicate request row. Callers treat it as
	// "already handled", not a fatal fault.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an unknown draft or request ID
	ErrNotFound = errors.New("not found")

	// ErrState marks an operation illegal in the current state, such
	// as re-reviewing a draft or a backward status transition.
	ErrState = errors.New("invalid state")
)

// ExternalServiceError wraps a failed call to an external
// collaborator (AI service, messaging gateway, cleaner channel).
// Never retried inside the core; the polling layer decides
// retry-next-cycle policy.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError wraps err with the collaborator name
func NewExternalServiceError(service string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalServiceError{Service: service, Err: err}
}

// IsExternal reports whether err originated at a collaborator boundary
func IsExternal(err error) bool {
	var e *ExternalServiceError
	return errors.As(err, &e)
}

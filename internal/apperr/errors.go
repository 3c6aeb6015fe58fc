package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing records.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor lacks ownership or role.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream marks a failure of the external scoring service.
	ErrUpstream = errors.New("upstream service failure")
	// ErrQueue marks a failed enqueue. Callers absorb it.
	ErrQueue = errors.New("queue failure")
)

// InvalidTransitionError reports an illegal plan status edge.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// ValidationError reports malformed input, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

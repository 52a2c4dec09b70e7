package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of error categories surfaced to callers
// (spec.md §7). Kinds are compared by value, never by formatted message.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindAgent      ErrorKind = "agent"
	ErrorKindBackend    ErrorKind = "backend"
	ErrorKindAudio      ErrorKind = "audio"
	ErrorKindCancelled  ErrorKind = "cancelled"
	ErrorKindInternal   ErrorKind = "internal"
)

// StageError is the error type every pipeline stage returns on failure. It
// carries the kind (for caller-facing classification) and the stage name
// (for logs/diagnostics), never a stack trace.
type StageError struct {
	Kind  ErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewStageError(kind ErrorKind, stage string, err error) *StageError {
	return &StageError{Kind: kind, Stage: stage, Err: err}
}

// KindOf extracts the ErrorKind from err if it is (or wraps) a *StageError,
// defaulting to ErrorKindInternal for anything else.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrorKindInternal
}

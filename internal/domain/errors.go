package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage")
)

// Error is the single error type services return. Msg is safe to show to API
// clients; Err keeps the lower-level cause for logs.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence or filesystem failure as "Error <op>: <detail>".
func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Msg: fmt.Sprintf("Error %s: %v", op, err), Err: err}
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Msg
	}
	return err.Error()
}

package timeline

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the gateway or the editor wraps exactly
// one of these so callers can branch with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrIO                 = errors.New("io error")
	ErrUnsupportedMedia   = errors.New("unsupported media")
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrOverlap is a validation error: errors.Is(ErrOverlap, ErrValidation) holds.
	ErrOverlap = &Error{Kind: ErrValidation, Msg: "clip overlaps an existing clip"}
)

// Error carries a taxonomy kind together with the operation that failed.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Validationf builds an ErrValidation error.
func Validationf(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds an ErrNotFound error.
func NotFoundf(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

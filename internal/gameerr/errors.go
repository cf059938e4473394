// Package gameerr provides structured error handling for the room runtime.
// It enables clear communication of why a command or internal step failed,
// with enough context to decide whether the error is surfaced to a client,
// logged, or both.
package gameerr

import (
	"errors"
	"fmt"
)

// Code categorizes an error so callers can decide how to surface it.
type Code string

const (
	// CodeValidation covers bad command shape, unknown ability, incompatible race/class.
	CodeValidation Code = "validation"
	// CodeState covers wrong phase, duplicate action, cooldown, stunned, dead.
	CodeState Code = "state"
	// CodeNotFound covers unknown room/player/ability.
	CodeNotFound Code = "not_found"
	// CodeCapacity covers server full, room full.
	CodeCapacity Code = "capacity"
	// CodeAuth covers a non-host caller attempting a host-only action.
	CodeAuth Code = "auth"
	// CodeTransient covers recoverable bus unavailability.
	CodeTransient Code = "transient"
	// CodeInvariant covers an internal assertion failure (e.g. negative HP after clamp).
	CodeInvariant Code = "invariant_violation"
)

// Error is a structured game-rule or system error.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "gameerr: nil error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Option configures an Error at construction time.
type Option func(*Error)

// WithMeta attaches a key/value pair of diagnostic context to the error.
func WithMeta(key string, value any) Option {
	return func(e *Error) {
		if e.Meta == nil {
			e.Meta = make(map[string]any)
		}
		e.Meta[key] = value
	}
}

// New creates an Error with the given code and message.
func New(code Code, message string, opts ...Option) *Error {
	e := &Error{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err, preserving its Code if it is already a *Error.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return New(CodeInvariant, fmt.Sprintf("gameerr.Wrap called with nil: %s", message))
	}
	var inner *Error
	code := CodeInvariant
	var meta map[string]any
	if errors.As(err, &inner) && inner != nil {
		code = inner.Code
		meta = copyMeta(inner.Meta)
	}
	e := &Error{Code: code, Message: message, Cause: err, Meta: meta}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WrapWithCode wraps err under an explicit code, overriding any code the cause carried.
func WrapWithCode(err error, code Code, message string, opts ...Option) *Error {
	if err == nil {
		return New(CodeInvariant, fmt.Sprintf("gameerr.WrapWithCode called with nil: %s", message))
	}
	e := &Error{Code: code, Message: message, Cause: err}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CodeOf extracts the Code from any error, returning "" if err is not a *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}

// Is reports whether err is a *Error carrying the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// Validation creates a CodeValidation error.
func Validation(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

// State creates a CodeState error.
func State(format string, args ...any) *Error { return Newf(CodeState, format, args...) }

// NotFound creates a CodeNotFound error.
func NotFound(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

// Capacity creates a CodeCapacity error.
func Capacity(format string, args ...any) *Error { return Newf(CodeCapacity, format, args...) }

// Auth creates a CodeAuth error.
func Auth(format string, args ...any) *Error { return Newf(CodeAuth, format, args...) }

// Transient creates a CodeTransient error.
func Transient(format string, args ...any) *Error { return Newf(CodeTransient, format, args...) }

// Invariant creates a CodeInvariant error.
func Invariant(format string, args ...any) *Error { return Newf(CodeInvariant, format, args...) }

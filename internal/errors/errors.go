package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced at the public boundary
var (
	// ErrValidation is malformed input, rejected before reaching the session core
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized covers bad credentials and invalid, expired or mismatched tokens
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is an authenticated principal lacking the required role
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is a duplicate registration or a lost refresh race
	ErrConflict = errors.New("conflict")
	// ErrUnavailable is a store or signer failure
	ErrUnavailable = errors.New("unavailable")
)

// General errors
var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Error carries a public kind and message alongside the internal cause.
// Message is safe to return to callers; Cause is for logs and tests only.
type Error struct {
	Kind    error
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = "[" + e.Op + "] " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// New builds an *Error of the given kind
func New(kind error, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

func Unauthorized(op, message string, cause error) *Error {
	return New(ErrUnauthorized, op, message, cause)
}

func Forbidden(op, message string, cause error) *Error {
	return New(ErrForbidden, op, message, cause)
}

func Conflict(op, message string, cause error) *Error {
	return New(ErrConflict, op, message, cause)
}

func Unavailable(op, message string, cause error) *Error {
	return New(ErrUnavailable, op, message, cause)
}

func Validation(op, message string, cause error) *Error {
	return New(ErrValidation, op, message, cause)
}

// publicMapping is the single table translating kinds into transport responses
var publicMapping = []struct {
	kind    error
	status  int
	name    string
	message string
}{
	{ErrValidation, http.StatusBadRequest, "validation_error", "invalid request"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "unauthorized"},
	{ErrForbidden, http.StatusForbidden, "forbidden", "insufficient permissions"},
	{ErrConflict, http.StatusConflict, "conflict", "conflict"},
	{ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "service unavailable"},
}

// Public maps err onto the status code, kind name and message a caller may see.
// Unknown errors collapse to a 500 without exposing any detail.
func Public(err error) (status int, kind string, message string) {
	for _, m := range publicMapping {
		if !errors.Is(err, m.kind) {
			continue
		}
		message = m.message
		var e *Error
		if errors.As(err, &e) && e.Message != "" && e.Kind == m.kind {
			message = e.Message
		}
		return m.status, m.name, message
	}
	return http.StatusInternalServerError, "internal_error", ErrInternal.Error()
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

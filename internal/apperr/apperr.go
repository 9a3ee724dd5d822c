package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure so the transport layer can pick a status.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindValidation     Kind = "validation"
	KindTransientIO    Kind = "transient_io"
	KindInternal       Kind = "internal"
)

// Error carries a kind, a short machine code and an optional cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

func Wrap(kind Kind, code string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Cause: cause}
}

func NotFound(code string) *Error {
	return New(KindNotFound, code)
}

func Conflict(code string) *Error {
	return New(KindConflict, code)
}

func Validation(code string) *Error {
	return New(KindValidation, code)
}

// ValidationField reports a single invalid field.
func ValidationField(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "validation_failed",
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

func Internal(cause error) *Error {
	return Wrap(KindInternal, "server_error", cause)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// As extracts the *Error from the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}

package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain failure so the transport can pick a status.
type ErrorCode string

const (
	CodeInvalidInput ErrorCode = "invalid_input"
	CodeConflict     ErrorCode = "conflict"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeForbidden    ErrorCode = "forbidden"
	CodeNotFound     ErrorCode = "not_found"
	CodeRateLimited  ErrorCode = "rate_limited"
)

// Error is a client-facing failure. Message is safe to return verbatim.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a domain error with no underlying cause.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError attaches a cause that is logged but never shown to clients.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Invalid is shorthand for a CodeInvalidInput error.
func Invalid(message string) *Error { return NewError(CodeInvalidInput, message) }

// NotFound is shorthand for a CodeNotFound error.
func NotFound(message string) *Error { return NewError(CodeNotFound, message) }

// Forbidden is shorthand for a CodeForbidden error.
func Forbidden(message string) *Error { return NewError(CodeForbidden, message) }

// Unauthorized is shorthand for a CodeUnauthorized error.
func Unauthorized(message string) *Error { return NewError(CodeUnauthorized, message) }

// AsError extracts a domain error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	de, ok := AsError(err)
	return ok && de.Code == code
}

// Package errs defines the error taxonomy the dispatch kernel maps to HTTP
// status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure class.
type Code string

const (
	Validation       Code = "VALIDATION"
	Parse            Code = "PARSE"
	Unauthenticated  Code = "UNAUTHENTICATED"
	Forbidden        Code = "FORBIDDEN"
	NotFound         Code = "NOT_FOUND"
	MethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	Internal         Code = "INTERNAL"
)

// Error carries a code, a client-facing message and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func ValidationError(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}

func ParseError(message string, cause error) *Error {
	return Wrap(Parse, message, cause)
}

func UnauthenticatedError(message string) *Error {
	return New(Unauthenticated, message)
}

func ForbiddenError(message string) *Error {
	return New(Forbidden, message)
}

func NotFoundError(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func MethodNotAllowedError(method string) *Error {
	return New(MethodNotAllowed, fmt.Sprintf("method %s not allowed", method))
}

func InternalError(message string, cause error) *Error {
	return Wrap(Internal, message, cause)
}

// CodeOf returns the code of the first *Error in err's chain, or Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// StatusOf maps err to an HTTP status. Errors outside the taxonomy are 500.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch CodeOf(err) {
	case Validation, Parse:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case MethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show a client. Server errors never
// expose their cause.
func PublicMessage(err error) string {
	var e *Error
	if StatusOf(err) >= http.StatusInternalServerError || !errors.As(err, &e) {
		return http.StatusText(http.StatusInternalServerError)
	}
	return e.Message
}

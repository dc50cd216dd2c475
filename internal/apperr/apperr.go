// Package apperr defines the application error taxonomy.
//
// Services return *Error values with a machine-readable code; the HTTP layer
// maps codes to status codes and never leaks internal error text to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeConflict        Code = "CONFLICT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeNotVerified     Code = "NOT_VERIFIED"
	CodeSuspended       Code = "SUSPENDED"
	CodeOTPInvalid      Code = "OTP_INVALID"
	CodeOTPExpired      Code = "OTP_EXPIRED"
	CodeEmailDispatch   Code = "EMAIL_DISPATCH_FAILED"
	CodeInternal        Code = "INTERNAL"
)

type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is makes two *Error values match on code, so errors.Is(err, apperr.NotFound("")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a cause for logs; Message stays the client-safe text.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func Validation(message string) *Error { return New(CodeValidation, message) }
func Conflict(message string) *Error   { return New(CodeConflict, message) }
func NotFound(message string) *Error   { return New(CodeNotFound, message) }
func Forbidden(message string) *Error  { return New(CodeForbidden, message) }

func Unauthenticated(message string) *Error { return New(CodeUnauthenticated, message) }

func Internal(cause error) *Error {
	return Wrap(CodeInternal, "Internal server error", cause)
}

// StatusOf maps an error to the HTTP status carried by the response.
// Unknown errors are treated as internal.
func StatusOf(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeValidation, CodeOTPInvalid, CodeOTPExpired:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotVerified, CodeSuspended:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeEmailDispatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the machine-readable code, defaulting to INTERNAL.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return CodeInternal
	}
	return e.Code
}

// MessageOf extracts the client-safe message, defaulting to a generic one.
func MessageOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Internal server error"
	}
	return e.Message
}

// Package apperrors defines coded domain errors shared across the engine and
// its stores. Codes travel to the transport layer where they map onto HTTP
// statuses, keeping handlers free of error-classification logic.
package apperrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeConfiguration Code = "configuration_error"
	CodeStorageRead   Code = "storage_read_error"
	CodeStorageWrite  Code = "storage_write_error"
	CodeNotFound      Code = "not_found"
	CodeBadRequest    Code = "bad_request"
	CodeInternal      Code = "internal_error"
)

// Error is a domain error with a stable machine-readable code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap keeps the original cause reachable through errors.Is/As while
// attaching a domain code.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToHTTPStatus translates a domain code into an HTTP status for the
// transport layer's error envelope.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConfiguration, CodeStorageRead, CodeStorageWrite, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Package apperrors defines the closed set of error kinds the API
// produces and their mapping onto HTTP statuses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindInvalidInterval marks malformed client input such as a bad
	// interval or variant-id string.
	KindInvalidInterval Kind = iota
	// KindMissingParameter marks a request that omitted a required
	// query parameter.
	KindMissingParameter
	// KindNotFound marks a lookup that matched nothing.
	KindNotFound
	// KindDecode marks a single row that could not be decoded. Rows
	// with this kind are logged and skipped, never surfaced to clients.
	KindDecode
	// KindDataTransform marks a failure turning store rows into API
	// objects.
	KindDataTransform
	// KindTask marks an internal task or store failure.
	KindTask
)

// Error carries a kind, a message, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidInterval:
		return fmt.Sprintf("Invalid interval: %s", e.Message)
	case KindMissingParameter:
		return fmt.Sprintf("Missing required parameter: %s", e.Message)
	case KindNotFound:
		return fmt.Sprintf("Not found: %s", e.Message)
	case KindDecode:
		return fmt.Sprintf("Failed to decode row: %s", e.Message)
	case KindDataTransform:
		return fmt.Sprintf("Failed to transform data: %s", e.Message)
	default:
		return fmt.Sprintf("Internal task error: %s", e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func InvalidInterval(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInterval, Message: fmt.Sprintf(format, args...)}
}

// MissingParameter names a required query parameter the request
// omitted.
func MissingParameter(name string) *Error {
	return &Error{Kind: KindMissingParameter, Message: name}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Decode(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindDecode, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func DataTransform(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDataTransform, Message: fmt.Sprintf(format, args...)}
}

func Task(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindTask, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// HTTPStatus maps an error to the status code served to clients.
// Anything that is not an *Error is an internal failure.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindInvalidInterval, KindMissingParameter:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

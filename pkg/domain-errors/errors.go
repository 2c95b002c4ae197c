// Package domainerrors provides the code-carrying error type used across all
// domain services. Services create or wrap errors with a stable machine
// readable code; transports translate codes into status lines without ever
// exposing storage or stack detail to the caller.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	// CodeInvalidInput marks malformed values rejected at a trust boundary
	// (unparseable ids, labels, enums).
	CodeInvalidInput Code = "invalid_input"

	// CodeValidation marks well-formed input that violates a domain rule
	// (negative quantity, missing required reference).
	CodeValidation Code = "validation"

	// CodeBadRequest marks requests that cannot be honored in the current
	// state of the world (wrong shipment state for a transition, agreement
	// not accepted).
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a uniqueness or exclusivity violation.
	CodeConflict Code = "conflict"

	// CodeUnauthorized marks missing or unusable credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden marks an authenticated actor lacking permission or
	// base scope for the requested action.
	CodeForbidden Code = "forbidden"

	// CodeInvariantViolation marks an illegal aggregate state transition.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeResourceExhausted marks a server-side retry budget running out,
	// e.g. label generation failing to find a free identifier.
	CodeResourceExhausted Code = "resource_exhausted"

	// CodeTimeout marks an operation exceeding its deadline.
	CodeTimeout Code = "timeout"

	// CodeInternal marks unexpected server-side failures.
	CodeInternal Code = "internal"
)

// Error carries a code and human-readable message, optionally wrapping a
// cause. The cause is preserved for logs but never rendered to callers.
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

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. If err is nil,
// Wrap returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode kept for existing call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost domain error in the chain, or
// CodeInternal when the error carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message of a domain error, or a generic
// fallback for non-domain errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

// ToHTTPStatus maps error codes to HTTP status codes for transport layers.
func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidInput, CodeValidation, CodeBadRequest, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

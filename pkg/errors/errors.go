// Package errors provides the scheduling engine's error taxonomy: a
// small set of Codes (spec §7) carried on an AppError, rather than
// ad-hoc sentinel errors or string matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a kind of failure, not a Go type.
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Scheduling-engine specific (spec §7).
	CodeNoFeasibleSolution Code = "NO_FEASIBLE_SOLUTION"
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"
	CodeTimeLimitExceeded  Code = "TIME_LIMIT_EXCEEDED"
)

// AppError is the engine's error type: a stable Code plus a
// human-readable message, an optional cause, and structured fields for
// callers that want more than the message string.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches a longer explanation.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField attaches a structured field.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New creates an AppError with the HTTP status the code maps to.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: codeToHTTPStatus(code)}
}

// Wrap creates an AppError that carries an underlying cause.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: codeToHTTPStatus(code), Cause: err}
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeTimeLimitExceeded:
		return http.StatusGatewayTimeout
	case CodeNoFeasibleSolution:
		return http.StatusUnprocessableEntity
	case CodeBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the Code from err, or CodeUnknown if err is not an
// AppError.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus extracts the HTTP status err maps to, or 500 if err is
// not an AppError.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// InvalidInput builds a CodeInvalidInput error for the named field
// (spec §7 kind 1).
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("field %q invalid: %s", field, reason)).WithField("field", field)
}

// NoFeasibleSolution builds a CodeNoFeasibleSolution error. The engine
// itself does not raise it: an infeasible model and a timeout without a
// feasible solution (spec §7 kinds 2 and 4) are both returned as a
// Schedule with IsFeasible = false.
func NoFeasibleSolution(reason string) *AppError {
	return New(CodeNoFeasibleSolution, reason)
}

// BackendUnavailable wraps an underlying solver/backend failure (spec
// §7 kind 5); it is never recovered locally.
func BackendUnavailable(cause error) *AppError {
	return Wrap(cause, CodeBackendUnavailable, "CP/MIP backend unavailable")
}

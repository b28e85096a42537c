// Package apperr defines the machine-readable error taxonomy shared by
// the service layer and the HTTP handlers, per the error codes the API
// exposes (validation_error, bad_request, unauthorized, not_found,
// conflict, gone, internal_error).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error classification.
type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeGone         Code = "gone"
	CodeInternal     Code = "internal_error"
)

// httpStatus maps each Code to its HTTP status.
var httpStatus = map[Code]int{
	CodeValidation:   http.StatusBadRequest,
	CodeBadRequest:   http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeNotFound:     http.StatusNotFound,
	CodeConflict:     http.StatusConflict,
	CodeGone:         http.StatusGone,
	CodeInternal:     http.StatusInternalServerError,
}

// Error is the tagged error sum returned by the service and store
// layers. Handlers convert it into the API's error envelope.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus returns the HTTP status code for this error's Code.
func (e *Error) HTTPStatus() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds an *Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error carrying cause as its Unwrap() target.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetails attaches structured detail fields and returns the same
// error for chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// CodeOf extracts the Code from err, defaulting to CodeInternal if err
// is not (or does not wrap) an *Error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err is an *Error carrying the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// permanentCodes are classifications that will never succeed on
// retry: the request itself is rejected, not the infrastructure.
var permanentCodes = map[Code]bool{
	CodeValidation: true,
	CodeBadRequest: true,
	CodeConflict:   true,
	CodeNotFound:   true,
	CodeGone:       true,
}

// Permanent reports whether err is a rejection a retry cannot fix
// (validation, conflict, not found, gone), as opposed to a transient
// failure (dropped connection, serialization conflict) that a caller
// may retry. A plain error that doesn't carry an apperr.Code is
// treated as transient.
func Permanent(err error) bool {
	return permanentCodes[CodeOf(err)]
}

// Common sentinel errors reused across the store/service boundary.
var (
	ErrNotFound      = New(CodeNotFound, "not found")
	ErrConflict      = New(CodeConflict, "conflict")
	ErrGone          = New(CodeGone, "gone")
	ErrUnauthorized  = New(CodeUnauthorized, "unauthorized")
	ErrBadRequest    = New(CodeBadRequest, "bad request")
	ErrValidation    = New(CodeValidation, "validation error")
)

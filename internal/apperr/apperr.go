// Package apperr classifies service failures with a stable code so the HTTP
// layer can map them without string matching.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a failure category independent of the transport.
type Code string

const (
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeForbidden            Code = "forbidden"
	CodeUnentitled           Code = "unentitled"
	CodeConfigurationMissing Code = "configuration_missing"
	CodeValidation           Code = "validation"
	CodeInternal             Code = "internal"
)

// Error carries a Code, an operator-facing message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so errors.Is(err, apperr.NotFound("")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. An existing code in err is kept.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func NotFound(msg string) error             { return New(CodeNotFound, msg) }
func Conflict(msg string) error             { return New(CodeConflict, msg) }
func Forbidden(msg string) error            { return New(CodeForbidden, msg) }
func Validation(msg string) error           { return New(CodeValidation, msg) }
func ConfigurationMissing(msg string) error { return New(CodeConfigurationMissing, msg) }

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of err, CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code to the status the API answers with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConfigurationMissing:
		return http.StatusUnprocessableEntity
	case CodeUnentitled:
		// never surfaced as such; agent endpoints degrade to an empty result
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

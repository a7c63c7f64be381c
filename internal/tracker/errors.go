// Package tracker implements the task lifecycle: recurrence-aware views,
// status transitions, deletes and edits of recurring series, and the goal
// ledger that keeps accumulated values consistent through all of them.
package tracker

import (
	"database/sql"
	"errors"
	"fmt"
)

// Stable, machine-readable error codes.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "SCHEDULE_CONFLICT"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
)

// Error is a structured domain error with a machine-readable code and
// optional details for the API layer.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Errorf creates an Error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of err if it is (or wraps) an *Error,
// CodeNotFound for sql.ErrNoRows, and CodeInternal otherwise.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	if errors.Is(err, sql.ErrNoRows) {
		return CodeNotFound
	}
	return CodeInternal
}

// notFoundOr turns a missing-row error into a NOT_FOUND domain error and
// passes everything else through.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return Errorf(CodeNotFound, format, args...)
	}
	return err
}

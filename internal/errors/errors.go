// Package errors provides structured error types for qrstyle.
//
// Every failure that crosses a package boundary carries a machine-readable
// Code so that the CLI and the HTTP API can decide how to report it:
//
//	err := errors.New(errors.ErrCodeGridTooLarge, "grid of %d modules does not fit %dx%d", n, w, h)
//	if errors.Is(err, errors.ErrCodeGridTooLarge) {
//	    // reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeImageUnavailable, origErr, "fetch %s", ref)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidStyle Code = "INVALID_STYLE"
	ErrCodeInvalidColor Code = "INVALID_COLOR"

	// Render errors. All of them are terminal for the render attempt.
	ErrCodeGridTooLarge     Code = "GRID_TOO_LARGE"
	ErrCodeMissingImage     Code = "MISSING_IMAGE"
	ErrCodeImageUnavailable Code = "IMAGE_UNAVAILABLE"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// Only the outermost *Error in the chain is consulted, so a wrapped cause
// with a different code does not change the classification.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error: the messages of
// every *Error in the chain, outermost first, without codes. Causes that are
// not *Error values are left out since they carry transport and parser
// detail. Errors that are not *Error return their error string.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	msg := e.Message
	for e.Cause != nil {
		var inner *Error
		if !errors.As(e.Cause, &inner) {
			break
		}
		msg += ": " + inner.Message
		e = inner
	}
	return msg
}

// Message returns only the message of the outermost *Error, or a generic
// text for other errors. It suits replies that must not reveal why a
// dependency failed.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

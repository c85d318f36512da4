// Package errors provides structured error types for the cardplay engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - DUPLICATE_*/UNKNOWN_*: Structural errors (caller mistakes)
//   - GRAPH_*: Composition-level problems
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownNode, "node %q not found", id)
//	if errors.Is(err, errors.ErrCodeUnknownNode) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "compile %s", name)
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
	ErrCodeInvalidMode  Code = "INVALID_MODE"
	ErrCodeInvalidPatch Code = "INVALID_PATCH"

	// Structural errors (caller mistakes, surfaced immediately)
	ErrCodeDuplicateNode  Code = "DUPLICATE_NODE"
	ErrCodeDuplicateEntry Code = "DUPLICATE_ENTRY"
	ErrCodeUnknownNode    Code = "UNKNOWN_NODE"
	ErrCodeUnknownEdge    Code = "UNKNOWN_EDGE"
	ErrCodeUnknownEntry   Code = "UNKNOWN_ENTRY"
	ErrCodeUnknownCard    Code = "UNKNOWN_CARD"
	ErrCodeUnknownPort    Code = "UNKNOWN_PORT"

	// Composition-level problems (collected by validators)
	ErrCodeGraphCycle        Code = "GRAPH_CYCLE"
	ErrCodeGraphDisconnected Code = "GRAPH_DISCONNECTED"
	ErrCodeTypeMismatch      Code = "TYPE_MISMATCH"
	ErrCodeNoAdapterPath     Code = "NO_ADAPTER_PATH"
	ErrCodeEmptyComposition  Code = "EMPTY_COMPOSITION"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

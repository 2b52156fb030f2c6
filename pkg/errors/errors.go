// Package errors provides structured error types for sketchmap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the editor
//   - Machine-readable error codes for programmatic handling
//   - User-facing messages in the user's language
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - EMPTY_FEATURE_SET, NO_ACTIVE_DRAWING_TOOL: recoverable editor states
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGeometry, "polygon needs %d vertices", 3)
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // Handle validation error
//	}
//
//	// Errors with a catalog key can be shown in the user's language
//	err := errors.Localized(errors.ErrCodeEmptyFeatureSet, errors.MsgNothingToExport, "no features to export")
//	fmt.Println(errors.UserMessageIn(err, "ar"))
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"
	ErrCodeInvalidStyle    Code = "INVALID_STYLE"
	ErrCodeInvalidUnit     Code = "INVALID_UNIT"
	ErrCodeInvalidCommand  Code = "INVALID_COMMAND"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Editor state errors, shown to the user and never retried
	ErrCodeEmptyFeatureSet Code = "EMPTY_FEATURE_SET"
	ErrCodeNoActiveTool    Code = "NO_ACTIVE_DRAWING_TOOL"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message (English)
	Key     string // Message catalog key (optional)
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

// Localized creates a new Error whose user message is looked up in the
// message catalog under key.
func Localized(code Code, key, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Key:     key,
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

// UserMessageIn returns the message for err in the given language.
// Falls back to [UserMessage] when the error has no catalog key or the
// language has no entry for it.
func UserMessageIn(err error, lang string) string {
	var e *Error
	if errors.As(err, &e) && e.Key != "" {
		if msg, ok := lookup(lang, e.Key); ok {
			return msg
		}
	}
	return UserMessage(err)
}

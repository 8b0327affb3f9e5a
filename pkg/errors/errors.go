// Package errors provides structured error types for the timeline renderer.
//
// Every failure the tool can report falls into a small set of codes so the
// CLI and the HTTP server can map them consistently:
//
//   - INVALID_DOCUMENT: the timeline document is malformed (bad JSON, missing
//     keys, wrong types)
//   - IO_ERROR: the input cannot be read or the output cannot be written
//   - INVALID_*: other input validation failures (flags, config files)
//   - INTERNAL_ERROR: unexpected failures in a drawing backend
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "nodes[0]: missing key %q", "name")
//	if errors.Is(err, errors.ErrCodeInvalidDocument) {
//	    // Reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "create %s", path)
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
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPolicy   Code = "INVALID_POLICY"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeIO           Code = "IO_ERROR"

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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As is errors.As from the standard library, re-exported so callers need
// only one errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
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

// UserMessage returns the message of the first *Error in the chain without
// its code prefix, or err.Error() for other errors. The render API reports
// the code in a separate field.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + UserMessage(e.Cause)
	}
	return e.Message
}

// IsClientError reports whether err was caused by bad input rather than by
// the environment or a bug. The HTTP server uses it to pick 4xx over 5xx.
func IsClientError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidDocument, ErrCodeInvalidFormat,
		ErrCodeInvalidPolicy, ErrCodeInvalidConfig, ErrCodeInvalidPath:
		return true
	}
	return false
}

// Package errs provides the structured error type shared by the catalog and
// workout logging flows.
//
// Every failure that reaches the UI carries a Code for categorization and a
// human-readable Message suitable for display.
package errs

import (
	"errors"
	"fmt"
)

// Code represents a unique error identifier for categorization.
type Code string

const (
	// CodeValidation marks input rejected before any network call.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeUpstreamEmpty marks an interpreter response with no candidates.
	CodeUpstreamEmpty Code = "UPSTREAM_EMPTY_RESULT"
	// CodeService marks any interpreter or store failure during submission.
	CodeService Code = "SERVICE_FAILURE"
	// CodeHydration marks a failed startup load of the persisted log.
	CodeHydration Code = "HYDRATION_FAILURE"
	// CodeCatalog marks a failed catalog fetch.
	CodeCatalog Code = "CATALOG_FAILURE"
	// CodeInternal is reported for errors not created by this package.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is the base error type for fitflow failures.
type Error struct {
	Code    Code   // Unique error code for categorization
	Message string // Human-readable message
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code, so sentinel
// values below match any error of their category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is checks against a category.
var (
	ErrValidation    = &Error{Code: CodeValidation}
	ErrUpstreamEmpty = &Error{Code: CodeUpstreamEmpty}
	ErrService       = &Error{Code: CodeService}
	ErrHydration     = &Error{Code: CodeHydration}
	ErrCatalog       = &Error{Code: CodeCatalog}
)

// New creates a new Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps cause with the given code and message.
func Wrap(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// UserMessage returns the text to show for err. Errors from this package
// show their Message; anything else falls back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// Package domainerrors carries typed, code-bearing errors across layer boundaries.
//
// Services return *Error values so transports (HTTP, CLI) can translate them
// without inspecting message text. Stores should not construct these directly;
// they return pkg/platform/sentinel facts which services translate.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	// Sale engine taxonomy.
	CodeReferenceNotFound          Code = "reference_not_found"
	CodeInactiveReference          Code = "inactive_reference"
	CodeVehicleNotAvailable        Code = "vehicle_not_available"
	CodeInvalidAmount              Code = "invalid_amount"
	CodeSaleNotCancellable         Code = "sale_not_cancellable"
	CodeConcurrentModification     Code = "concurrent_modification"
	CodeInconsistentInventoryState Code = "inconsistent_inventory_state"
	CodeInvalidTransition          Code = "invalid_transition"
	CodeTimeout                    Code = "timeout"
	CodeStorageFailure             Code = "storage_failure"

	// Generic codes.
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal_error"
)

// Error is a domain error with a code and a human-readable message.
// Err keeps the underlying cause for logs; it is never rendered to callers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost domain code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, safe to show to callers.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// Is is re-exported so callers importing this package do not need "errors" too.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

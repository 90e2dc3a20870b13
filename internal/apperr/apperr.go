package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the control surface.
type Kind string

const (
	// KindValidation marks caller-supplied input as missing or malformed.
	KindValidation Kind = "VALIDATION"
	// KindBackend marks a failed call into the messaging backend.
	KindBackend Kind = "BACKEND"
)

// Error is a classified error carrying an optional cause.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation creates a validation error for the given field.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Backend wraps a backend failure.
func Backend(message string, cause error) *Error {
	return &Error{Kind: KindBackend, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindBackend for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

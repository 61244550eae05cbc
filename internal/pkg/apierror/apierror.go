// Package apierror defines the error taxonomy shared by all modules. Handlers
// never inspect raw database or storage errors; services classify them into a
// Kind and the response layer maps each Kind to an HTTP status.
package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for response mapping.
type Kind int

const (
	// KindInternal is the fallback for unclassified failures.
	KindInternal Kind = iota
	// KindValidation is a bad shape, type, or missing required field.
	// Surfaced with field-level detail.
	KindValidation
	// KindUnauthorized means no caller where one is required.
	KindUnauthorized
	// KindPermission means the caller resolved but a capability or ownership
	// check failed. Surfaced without detail about why.
	KindPermission
	// KindNotVisible means the resource exists but the caller's status-floor
	// check fails. Rendered identically to KindNotFound.
	KindNotVisible
	// KindNotFound means the resource is absent.
	KindNotFound
	// KindConflict is a unique-constraint collision after retries exhausted.
	KindConflict
	// KindStorageTransient means the blob or relational store is temporarily
	// unavailable after bounded internal retries.
	KindStorageTransient
	// KindDataIntegrity means a stored value fails to parse under its declared
	// type. Logged; the single field is omitted rather than failing the request.
	KindDataIntegrity
)

// Error is the carrier type for classified failures.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation creates a validation error carrying a single field detail.
func Validation(field, detail string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Details: map[string]string{field: detail},
	}
}

// WithField adds a field detail, allocating the map on first use.
func (e *Error) WithField(field, detail string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string, 1)
	}
	e.Details[field] = detail
	return e
}

// KindOf extracts the Kind from an error chain, KindInternal if unclassified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

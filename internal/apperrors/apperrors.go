// Package apperrors defines the typed failures the catalog, ledger and
// balance services return. The gateway layer translates these into HTTP
// statuses; nothing below the gateway ever returns an untyped error for a
// business failure.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation marks malformed or out-of-range input, detected
	// before any store access.
	KindValidation Kind = iota
	// KindReference marks a dangling foreign key in a write payload.
	KindReference
	// KindNotFound marks an operation targeting a nonexistent id.
	KindNotFound
	// KindConflict marks a uniqueness violation or a delete blocked by
	// referencing rows.
	KindConflict
	// KindUnavailable marks a read whose primary and fallback paths both
	// failed.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindReference:
		return "reference"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input field for validation and conflict
	// errors, empty otherwise.
	Field string
	cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Reference(field, message string) *Error {
	return &Error{Kind: KindReference, Field: field, Message: message}
}

func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

func Unavailable(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, cause: cause}
}

// KindOf reports the kind of err when it is (or wraps) an *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Package errx holds the failure taxonomy shared by the service layer and the
// HTTP edge. Services return *Error values; the edge translates them exactly
// once through Translate.
package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The zero value is KindUnclassified.
type Kind int

const (
	KindUnclassified Kind = iota
	KindNotFound
	KindConflict
	KindInvalidState
	KindValidation
	KindAuthenticationFailed
	KindRefreshFailed

	// KindUnauthorized and KindForbidden are raised by the bearer token
	// middleware, before any handler runs.
	KindUnauthorized
	KindForbidden
)

const (
	// MessageAuthenticationFailed is the caller-facing message for a failed
	// credential exchange. The underlying cause travels in Err.
	MessageAuthenticationFailed = "Invalid credentials or authentication error"

	// MessageRefreshFailed is the caller-facing message for a failed refresh.
	MessageRefreshFailed = "Invalid refresh token or refresh error"

	// MessageValidation is the summary message for field validation failures.
	MessageValidation = "Request validation failed"

	// MessageInternal replaces the message of every unclassified failure.
	MessageInternal = "An internal error occurred. Please contact the administrator."
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string

	// Fields maps a request field to its validation message (KindValidation).
	Fields map[string]string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: errors.Is(err, &errx.Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return New(KindInvalidState, format, args...)
}

// Validation reports field-level input failures.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: MessageValidation, Fields: fields}
}

// AuthenticationFailed wraps the cause of a failed credential exchange.
func AuthenticationFailed(cause error) *Error {
	return &Error{Kind: KindAuthenticationFailed, Message: MessageAuthenticationFailed, Err: cause}
}

// RefreshFailed wraps the cause of a failed refresh exchange.
func RefreshFailed(cause error) *Error {
	return &Error{Kind: KindRefreshFailed, Message: MessageRefreshFailed, Err: cause}
}

// Unauthorized reports a missing or unverifiable bearer token.
func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

// Forbidden reports a verified caller without the required role.
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnclassified when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// IsKind reports whether err classifies as k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Package apperr defines the application error taxonomy shared by stores,
// services, and HTTP handlers.
//
// Stores and services return *Error values; the HTTP layer translates them
// to status codes uniformly (see system/httpjson). Anything that is not an
// *Error is treated as an internal error: logged, and surfaced to callers
// as a generic 500 without leaking detail.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	Authentication
	Authorization
	Conflict
	NotFound
	Validation
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string

	// MissingRoles names the roles the caller lacked, for Authorization
	// errors produced by the role guard.
	MissingRoles []string

	// Err is the wrapped cause, if any. It is never shown to API callers.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match any *Error of the same Kind, so sentinel
// comparisons like errors.Is(err, apperr.New(NotFound, "pod not found"))
// hold for wrapped errors too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New returns a classified error with a caller-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without exposing it to callers.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// MissingRoles builds the Authorization error the role guard returns when
// the caller lacks every required role.
func MissingRolesError(roles []string) *Error {
	return &Error{
		Kind:         Authorization,
		Message:      "user does not have required role: " + strings.Join(roles, ", "),
		MissingRoles: roles,
	}
}

// KindOf returns the Kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

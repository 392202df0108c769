// Package codeerr defines the closed error envelope the Controller
// facade returns to its collaborators (desktop UI, HTTP transport, CLI):
// every failure is one of invalid_argument, not_found, or internal.
package codeerr

import "fmt"

// Kind is the closed set of error categories a Controller call can fail
// with.
type Kind string

const (
	InvalidArgument Kind = "invalid_argument"
	NotFound        Kind = "not_found"
	Internal        Kind = "internal"
)

// Error is the envelope returned across the Controller boundary.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around an existing error, preserving it via
// errors.Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// InvalidArgf builds an invalid_argument Error with a formatted message.
func InvalidArgf(format string, args ...any) *Error {
	return New(InvalidArgument, fmt.Sprintf(format, args...))
}

// NotFoundf builds a not_found Error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

// Internalf wraps cause as an internal Error with a formatted message.
func Internalf(cause error, format string, args ...any) *Error {
	return Wrap(Internal, fmt.Sprintf(format, args...), cause)
}

// As reports whether err (or something it wraps) is a *Error, returning
// it if so.
func As(err error) (*Error, bool) {
	ce, ok := err.(*Error)
	if ok {
		return ce, true
	}
	type unwrapper interface{ Unwrap() error }
	for u, ok := err.(unwrapper); ok; u, ok = err.(unwrapper) {
		err = u.Unwrap()
		if ce, ok := err.(*Error); ok {
			return ce, true
		}
	}
	return nil, false
}

package gateway

import "errors"

// ValidationError reports credentials rejected locally, before any network
// call. It is surfaced inline on the login form.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// AuthenticationError covers both a remote rejection and a transport failure.
// The user-facing message never distinguishes the two; the wrapped cause is
// kept for logging only.
type AuthenticationError struct {
	cause error
}

func (e *AuthenticationError) Error() string {
	return "invalid username or password"
}

func (e *AuthenticationError) Unwrap() error {
	return e.cause
}

// ErrLoginSuperseded is returned when a logout happened while the login
// request was in flight. The principal is discarded instead of silently
// resurrecting the session.
var ErrLoginSuperseded = errors.New("login superseded by logout")

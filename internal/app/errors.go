package app

import (
	"errors"
	"fmt"

	"petlink/internal/apiclient"
	"petlink/pkg/validate"
)

var (
	// ErrNoSession indicates an operation that needs a logged-in user.
	ErrNoSession = errors.New("not logged in")
	// ErrNotConfirmed indicates the user declined a destructive action.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrRoleRequired indicates the session role may not perform the action.
	ErrRoleRequired = errors.New("role not permitted")
	// ErrMessageIncomplete indicates a send without order or content.
	ErrMessageIncomplete = errors.New("no order selected or empty message")
	// ErrNotSender indicates an attempt to delete someone else's message.
	ErrNotSender = errors.New("only the sender can delete a message")
	// ErrPasswordRequired indicates a profile deletion without password.
	ErrPasswordRequired = errors.New("password required")
	// ErrIncorrectPassword is returned when profile deletion is refused (403).
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrUserNotFound is returned when the profile no longer exists (404).
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError is the pre-network, field-scoped rejection of a form.
type ValidationError = validate.ValidationError

// AuthError reports a failed login or an unusable access token.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed: %s: %v", e.Reason, e.Err)
	}
	return "login failed: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// RequestError reports a failed remote call. Detail is the server-supplied
// text when there was one.
type RequestError struct {
	Op       string
	Status   int
	Detail   string
	Fallback string
	Err      error
}

func (e *RequestError) Error() string {
	return e.Op + ": " + e.UserMessage()
}

// UserMessage is the text shown in the error toast.
func (e *RequestError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Fallback != "" {
		return e.Fallback
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

func (e *RequestError) Unwrap() error { return e.Err }

// RegistrationError is a RequestError raised by register.
type RegistrationError struct {
	Err *RequestError
}

func (e *RegistrationError) Error() string {
	return "registration failed: " + e.Err.UserMessage()
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// SilentError wraps a failure that is deliberately not shown to the user.
type SilentError struct {
	Err error
}

func (e *SilentError) Error() string {
	return "silenced: " + e.Err.Error()
}

func (e *SilentError) Unwrap() error { return e.Err }

func newRequestError(op, fallback string, err error) *RequestError {
	re := &RequestError{Op: op, Fallback: fallback, Err: err}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		re.Status = apiErr.Status
		re.Detail = apiErr.Detail
	}
	return re
}

func statusOf(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsReported reports whether err was already raised as a toast.
func IsReported(err error) bool {
	var (
		vErr   *ValidationError
		aErr   *AuthError
		rErr   *RequestError
		regErr *RegistrationError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &aErr), errors.As(err, &rErr), errors.As(err, &regErr):
		return true
	}
	for _, sentinel := range []error{ErrNoSession, ErrRoleRequired, ErrMessageIncomplete, ErrNotSender, ErrPasswordRequired} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

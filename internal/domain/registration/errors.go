package registration

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired reset token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrCircuitOpen        = errors.New("risk provider circuit is open")
	ErrInternal           = errors.New("internal error")
)

// ValidationError rejects malformed input before any record is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StateError reports a status precondition failure. Current carries the
// registration's actual status so callers can show it.
type StateError struct {
	Current RegistrationStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("only pending_review registrations can be acted on (current status: %s)", e.Current)
}

// UnavailableError signals a transient provider failure. RetryAfter is a
// suggested backoff, not a guarantee.
type UnavailableError struct {
	Reason     string
	RetryAfter time.Duration
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return "service temporarily unavailable"
	}
	return e.Reason
}

func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func IsStateError(err error) (*StateError, bool) {
	var s *StateError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

func IsUnavailable(err error) (*UnavailableError, bool) {
	var u *UnavailableError
	if errors.As(err, &u) {
		return u, true
	}
	return nil, false
}

package auth

import "errors"

// ErrAuthentication matches every authentication failure
var ErrAuthentication = errors.New("authentication failed")

// Reason classifies why a request could not be authenticated
type Reason string

const (
	ReasonMissingToken Reason = "MissingToken"
	ReasonInvalidToken Reason = "InvalidToken"
	ReasonExpiredToken Reason = "ExpiredToken"
)

// Error is an authentication failure. Two errors match under errors.Is when
// their reasons are equal; every Error also matches ErrAuthentication.
type Error struct {
	Reason Reason
	Err    error
}

var (
	ErrMissingToken = &Error{Reason: ReasonMissingToken}
	ErrInvalidToken = &Error{Reason: ReasonInvalidToken}
	ErrExpiredToken = &Error{Reason: ReasonExpiredToken}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Err.Error()
	}
	return string(e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if target == ErrAuthentication {
		return true
	}
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}

// Message is the client-facing text for the failure
func (e *Error) Message() string {
	switch e.Reason {
	case ReasonMissingToken:
		return "No token provided. Authorization denied."
	case ReasonExpiredToken:
		return "Token expired. Please login again."
	default:
		return "Invalid token. Authorization denied."
	}
}

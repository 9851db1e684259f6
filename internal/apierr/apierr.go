package apierr

import (
	"errors"
	"fmt"
)

// Code classifies a messaging failure independently of transport.
type Code string

const (
	// Unauthorized means the bearer credential is missing or no longer valid.
	// The session collaborator owns re-login; messaging never retries these.
	Unauthorized Code = "UNAUTHORIZED"
	// Forbidden means the caller is not a participant of the conversation.
	Forbidden Code = "FORBIDDEN"
	// NotFound means the conversation or target user does not exist.
	NotFound Code = "NOT_FOUND"
	// InvalidArgument covers empty message content and self-conversation attempts.
	InvalidArgument Code = "INVALID_ARGUMENT"
	// Transient covers network and timeout failures; safe to retry manually.
	Transient Code = "TRANSIENT"
	// Internal is everything else (server bug, storage failure).
	Internal Code = "INTERNAL"
)

// Error is a coded error. The code survives fmt.Errorf %w wrapping and is
// recovered with CodeOf.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf extracts the code from err's chain. Unclassified errors are Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

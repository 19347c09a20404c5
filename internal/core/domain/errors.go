package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured
// error code.
type DomainError struct {
	Code    string // Error code (e.g., "SD-SESS-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support: two DomainErrors match when their
// codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// ErrorCode extracts the code from an error if it is a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Session errors (SESS).
var (
	// ErrSessionNotFound indicates the handle does not name a live session.
	// Releasing an already-released handle reports this error rather than
	// faulting.
	ErrSessionNotFound = NewDomainError("SD-SESS-4040", "session not found")

	// ErrSessionConflict indicates the session handle already exists.
	ErrSessionConflict = NewDomainError("SD-SESS-4090", "session handle conflict")

	// ErrSessionQuota indicates the open-session quota is exhausted.
	// This is the Go rendition of an allocation failure at open time.
	ErrSessionQuota = NewDomainError("SD-SESS-5071", "open session quota exhausted")

	// ErrDelimiterCapacity indicates a delimiter set exceeds the
	// configured bound; the session's previous set is retained.
	ErrDelimiterCapacity = NewDomainError("SD-SESS-5070", "delimiter capacity exceeded")
)

// Buffer errors (BUF).
var (
	// ErrBufferCapacity indicates a write exceeds the configured shared
	// buffer bound, the allocation-failure analogue for replace.
	ErrBufferCapacity = NewDomainError("SD-BUF-5070", "buffer capacity exceeded")
)

// Control errors (CMD).
var (
	// ErrUnsupportedCommand indicates a control command code outside the
	// device's registered magic/number namespace.
	ErrUnsupportedCommand = NewDomainError("SD-CMD-4220", "unsupported control command")
)

// Argument errors (ARG).
var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("SD-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SD-ARG-1002", "missing required argument")
)

// System errors (SYS).
var (
	// ErrFaultCopyIn indicates the caller-supplied payload could not be
	// read at the boundary.
	ErrFaultCopyIn = NewDomainError("SD-SYS-4060", "fault copying input")

	// ErrFaultCopyOut indicates the response could not be delivered to
	// the caller.
	ErrFaultCopyOut = NewDomainError("SD-SYS-4061", "fault copying output")

	// ErrInterrupted indicates the operation was interrupted before it
	// touched any state; the caller is expected to retry.
	ErrInterrupted = NewDomainError("SD-SYS-4990", "operation interrupted")

	// ErrInternal indicates an internal error.
	ErrInternal = NewDomainError("SD-SYS-5000", "internal error")
)

package api

import (
	"context"
	"errors"
)

var (
	// ErrCanceled marks a request aborted by its caller (replacement or logout).
	// It is not a failure and should not be shown to the user.
	ErrCanceled = errors.New("request canceled")

	// ErrTimeout marks a request aborted by its own deadline.
	ErrTimeout = errors.New("request timed out")
)

// Error is a failed backend call with a user-presentable message.
type Error struct {
	// Status is the HTTP status, or 0 for transport failures.
	Status  int
	Message string
	cause   error
	body    []byte
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsCanceled reports whether err came from caller cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Message returns err's message, or fallback when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

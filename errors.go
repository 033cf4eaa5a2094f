package trickle

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrCanceled indicates the request was cancelled by the caller.
	// It is never an error condition worth showing to the user.
	ErrCanceled = errors.New("request canceled")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrNotFound indicates the requested conversation does not exist.
	ErrNotFound = errors.New("conversation not found")

	// ErrNoCompleter indicates a non-streaming request was made without a
	// configured Completer.
	ErrNoCompleter = errors.New("no completer configured")
)

// TransportError reports a request that could not be completed: a network
// failure or a non-2xx HTTP status. Body holds the response body text when
// one was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "transport error"
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports an in-band error event decoded from an otherwise
// successful stream.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string { return e.Message }

// DecodeError reports a single record whose payload could not be parsed.
// It is recovered locally by decoders and never returned to callers.
type DecodeError struct {
	Record string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record %q: %v", e.Record, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Canceled wraps cause so that it matches both ErrCanceled and cause.
func Canceled(cause error) error {
	if cause == nil {
		return ErrCanceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

// IsCanceled reports whether err stems from caller cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

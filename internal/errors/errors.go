// Package errors provides custom error types for the easycli chat toolkit.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrInterrupted   = errors.New("interrupted")
	ErrStreamClosed  = errors.New("stream closed")
	ErrRawModeFailed = errors.New("raw terminal mode unavailable")
	ErrMissingAPIKey = errors.New("API key not set")
)

// TransportError represents a network-level failure while talking to the
// token source (connection refused, reset, timeout).
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is allows comparison with another TransportError
func (e *TransportError) Is(target error) bool {
	_, ok := target.(*TransportError)
	return ok
}

// NewTransportError creates a new TransportError
func NewTransportError(message string, err error) *TransportError {
	return &TransportError{Message: message, Err: err}
}

// ProviderError represents an error reported by the provider itself
// (invalid request, overloaded, rate limited). The stream ended cleanly at
// the transport level but the turn failed.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

// Is allows comparison with another ProviderError
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)
	return ok
}

// NewProviderError creates a new ProviderError
func NewProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// InputError represents a failure while acquiring keyboard input. It is
// always recovered locally; it exists so callers can log the cause of a
// fallback.
type InputError struct {
	Strategy string
	Err      error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error (%s): %v", e.Strategy, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// NewInputError creates a new InputError
func NewInputError(strategy string, err error) *InputError {
	return &InputError{Strategy: strategy, Err: err}
}

// IsTransportError reports whether err is a transport-level failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsProviderError reports whether err was reported by the provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsInterrupted reports whether err is a keyboard interrupt.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTransportError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewTransportError("POST /v1/messages", inner)

	if !IsTransportError(err) {
		t.Error("IsTransportError should match")
	}
	if IsProviderError(err) {
		t.Error("IsProviderError should not match a transport error")
	}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the cause")
	}
	wrapped := fmt.Errorf("stream failed: %w", err)
	if !IsTransportError(wrapped) {
		t.Error("classification should see through wrapping")
	}
}

func TestProviderError(t *testing.T) {
	err := NewProviderError("overloaded_error", "try again later")

	if !IsProviderError(err) {
		t.Error("IsProviderError should match")
	}
	if IsTransportError(err) {
		t.Error("IsTransportError should not match a provider error")
	}
	want := "provider error [overloaded_error]: try again later"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestProviderErrorWithoutCode(t *testing.T) {
	err := NewProviderError("", "something broke")
	if err.Error() != "provider error: something broke" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestIsInterrupted(t *testing.T) {
	wrapped := fmt.Errorf("read failed: %w", ErrInterrupted)
	if !IsInterrupted(wrapped) {
		t.Error("wrapped interrupt should classify")
	}
	if IsInterrupted(errors.New("other")) {
		t.Error("unrelated error should not classify as interrupt")
	}
}

func TestInputErrorUnwrap(t *testing.T) {
	err := NewInputError("inline", ErrRawModeFailed)
	if !errors.Is(err, ErrRawModeFailed) {
		t.Error("InputError should unwrap to its cause")
	}
}

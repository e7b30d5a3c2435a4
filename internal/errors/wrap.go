package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with a message, preserving its category.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCategory wraps an error with a message and attaches a taxonomy
// category. The original error text is kept, the category stays matchable.
func WrapWithCategory(err error, message string, category error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %v: %w", message, err, category)
}

// Transport wraps a message as a transport failure.
func Transport(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransport)
}

// Protocol wraps a message as a protocol failure.
func Protocol(message string) error {
	return fmt.Errorf("%s: %w", message, ErrProtocol)
}

// Auth wraps a message as an authorization failure.
func Auth(message string) error {
	return fmt.Errorf("%s: %w", message, ErrAuth)
}

// RateLimited wraps a message as an exhausted rate-limit failure.
func RateLimited(message string) error {
	return fmt.Errorf("%s: %w", message, ErrRateLimited)
}

// InvalidRequest wraps a message as a contract violation.
func InvalidRequest(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidRequest)
}

// NotFound wraps a message as a missing-model failure.
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// IsRetryable reports whether a failed call may be retried by the caller.
// Only rate limiting qualifies; transport, protocol and auth failures are
// terminal for the call that raised them.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrRateLimited)
}

// Category returns the taxonomy name for an error, for structured logging.
func Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTransport):
		return "ErrTransport"
	case errors.Is(err, ErrProtocol):
		return "ErrProtocol"
	case errors.Is(err, ErrAuth):
		return "ErrAuth"
	case errors.Is(err, ErrRateLimited):
		return "ErrRateLimited"
	case errors.Is(err, ErrInvalidRequest):
		return "ErrInvalidRequest"
	case errors.Is(err, ErrNotFound):
		return "ErrNotFound"
	default:
		return "Unknown"
	}
}

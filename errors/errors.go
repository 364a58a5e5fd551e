package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrStoreUnavailable indicates the answer store failed to respond or returned an error
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoDataAvailable indicates the store holds no questions and no fallback is configured
	ErrNoDataAvailable = errors.New("no data available")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a conditional write lost against a concurrent writer
	ErrConflict = errors.New("concurrent modification")

	// ErrServiceUnavailable indicates a required downstream service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")
)

// WrapError wraps an error with context message
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// StoreError tags err as a store failure while keeping the cause inspectable.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// InvalidInputf builds an ErrInvalidInput with a formatted reason
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsStoreUnavailable checks if error is a store failure
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsNoDataAvailable checks if error is an empty-store error
func IsNoDataAvailable(err error) bool {
	return errors.Is(err, ErrNoDataAvailable)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if error is a conditional write conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsServiceUnavailable checks if error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

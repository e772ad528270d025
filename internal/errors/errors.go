package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/logger"
)

var (
	// ErrInvalidInput is returned when a date or other boundary value is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a habit does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable is returned when the habit store cannot be reached.
	ErrStoreUnavailable = errors.New("habit store unavailable")
	// ErrAlreadyExists is returned when a habit with the same name is already stored.
	ErrAlreadyExists = errors.New("already exists")
)

// IsRetryable reports whether the failure is transient and the user may simply try again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// Unavailable wraps a backend failure as ErrStoreUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsRetryable(err) {
		return fmt.Sprintf("Error: %v (please try again)", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "retryable", IsRetryable(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal front-end
var (
	// Session errors
	ErrMalformedSession = errors.New("malformed session")
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnauthorized     = errors.New("unauthorized")

	// Role errors
	ErrUnknownRole = errors.New("unknown role")

	// Password recovery errors
	ErrNoPendingReset     = errors.New("no pending password reset")
	ErrRecoveryOutOfOrder = errors.New("password recovery step out of order")

	// Complaint errors
	ErrEmptySearch   = errors.New("search text is required")
	ErrUnknownStatus = errors.New("unknown complaint status")

	// Camera errors
	ErrInvalidCameraConfig = errors.New("invalid camera configuration")

	// Storage errors
	ErrStorageUnavailable = errors.New("client storage unavailable")
	ErrSealedValue        = errors.New("sealed value could not be opened")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

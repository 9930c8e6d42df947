package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the launcher core
var (
	// Authentication errors
	ErrAuthFailure = errors.New("authentication failed")

	// Session errors. ErrSessionExpired is the only error a caller should
	// interpret as "force the user to log in again"; it is always accompanied
	// by a cleared session.
	ErrSessionExpired = errors.New("session expired")
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

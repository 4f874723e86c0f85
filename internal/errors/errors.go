package errors

import (
	"errors"
	"fmt"
)

// Common error types for the client pipeline
var (
	// Token store errors
	ErrNotFound            = errors.New("not found")
	ErrNoAccessToken       = errors.New("no access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrCorruptTokenFile    = errors.New("token file is corrupt or the passphrase is wrong")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrNilResponse    = errors.New("transport returned neither a response nor an error")

	// Refresh errors
	ErrRefreshFailed = errors.New("token refresh failed")
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

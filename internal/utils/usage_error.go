package utils

import "errors"

// UsageError reports invalid command-line input or an interactive step the user declined.
// The CLI maps it to exit status 2.
type UsageError struct {
	Message string
}

func (usageError UsageError) Error() string {
	return usageError.Message
}

// NewUsageError builds a UsageError with the provided message.
func NewUsageError(message string) UsageError {
	return UsageError{Message: message}
}

// IsUsageError reports whether err or any error it wraps is a UsageError.
func IsUsageError(err error) bool {
	var usageError UsageError
	return errors.As(err, &usageError)
}

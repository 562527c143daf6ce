package apperrors

import "fmt"

// ClockError is a validation-class error carrying a stable machine-readable
// code alongside the human message, so client UIs can branch on the code
// instead of parsing text. It wraps one of the package sentinels for
// errors.Is checks.
type ClockError struct {
	Code    string
	Message string
	wrapped error
}

// NewClockError builds a ClockError wrapping the given sentinel.
func NewClockError(sentinel error, code, message string) *ClockError {
	return &ClockError{Code: code, Message: message, wrapped: sentinel}
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClockError) Unwrap() error {
	return e.wrapped
}

package apperrors

import "fmt"

// AppError carries an HTTP-ish status code and a message for infrastructure
// failures surfaced by the repository layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError wrapping the underlying error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates a 400 AppError.
func NewBadRequestError(message string) *AppError {
	return NewAppError(400, message, nil)
}

// NewUnauthorizedError creates a 401 AppError.
func NewUnauthorizedError(message string) *AppError {
	return NewAppError(401, message, nil)
}

// NewForbiddenError creates a 403 AppError.
func NewForbiddenError(message string) *AppError {
	return NewAppError(403, message, nil)
}

// NewNotFoundError creates a 404 AppError.
func NewNotFoundError(message string) *AppError {
	return NewAppError(404, message, nil)
}

// NewConflictError creates a 409 AppError.
func NewConflictError(message string) *AppError {
	return NewAppError(409, message, nil)
}

// NewInternalServerError creates a 500 AppError.
func NewInternalServerError(message string) *AppError {
	return NewAppError(500, message, nil)
}

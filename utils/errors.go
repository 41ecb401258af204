package utils

import (
	"errors"
	"fmt"
)

// Error keys shared with the locale files
const (
	ErrKeyInvalidCategory     = "INVALID_CATEGORY"
	ErrKeyInvalidPriority     = "INVALID_PRIORITY"
	ErrKeyPromptNotFound      = "PROMPT_NOT_FOUND"
	ErrKeyPromptLimit         = "PROMPT_LIMIT"
	ErrKeyUserNotFound        = "USER_NOT_FOUND"
	ErrKeyMessageNotFound     = "MESSAGE_NOT_FOUND"
	ErrKeyToolExecutionFailed = "TOOL_EXECUTION_FAILED"
	ErrKeyJSONParse           = "JSON_PARSE_ERROR"
	ErrKeyDatabase            = "DATABASE_ERROR"
	ErrKeyRateLimited         = "RATE_LIMITED"
	ErrKeyUnauthorized        = "UNAUTHORIZED"
	ErrKeyInvalidTemplate     = "INVALID_TEMPLATE"
	ErrKeyMessageTooLong      = "MESSAGE_TOO_LONG"
	ErrKeyNotFound            = "NOT_FOUND"
	ErrKeyInternal            = "INTERNAL_ERROR"
)

// AppError represents a custom application error with context
type AppError struct {
	Code    int                    // HTTP status code
	Key     string                 // Locale message id
	Message string                 // User-friendly message
	Err     error                  // Underlying error
	Context map[string]interface{} // Additional context
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// WithKey attaches a locale message id
func (e *AppError) WithKey(key string) *AppError {
	e.Key = key
	return e
}

// AsAppError unwraps err into an AppError when possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Common error constructors
func BadRequestError(message string, err error) *AppError {
	return NewAppError(400, message, err)
}

func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(401, message, err).WithKey(ErrKeyUnauthorized)
}

func ForbiddenError(message string, err error) *AppError {
	return NewAppError(403, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(404, message, err).WithKey(ErrKeyNotFound)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(429, message, nil).WithKey(ErrKeyRateLimited)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(500, message, err).WithKey(ErrKeyInternal)
}

package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes, one per failure class.
const (
	CodeConfig        = "CONFIG_ERROR"
	CodeNotConfigured = "NOT_CONFIGURED"
	CodeExtraction    = "EXTRACTION_FAILED"
	CodeRemoteCall    = "REMOTE_CALL_FAILED"
	CodeValidation    = "VALIDATION_FAILED"
)

// Common application errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotConfigured     = errors.New("not configured")
	ErrExtraction        = errors.New("extraction failed")
	ErrRemoteCall        = errors.New("remote call failed")
	ErrValidation        = errors.New("validation failed")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrTargetExists      = errors.New("target already exists")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf returns the AppError code in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Package types defines the error taxonomy shared by the pipeline packages.
package types

import "errors"

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrConfig           ErrorCode = "CONFIG_ERROR"
	ErrFilesystem       ErrorCode = "FILESYSTEM_ERROR"
	ErrExtraction       ErrorCode = "EXTRACTION_ERROR"
	ErrParse            ErrorCode = "PARSE_ERROR"
	ErrTranslation      ErrorCode = "TRANSLATION_ERROR"
	ErrTranslationQuota ErrorCode = "TRANSLATION_QUOTA"
	ErrRender           ErrorCode = "RENDER_ERROR"
	ErrInternal         ErrorCode = "INTERNAL_ERROR"
)

// IsFatal reports whether errors with this code abort the whole run.
// Every other code only fails the document being processed.
func (c ErrorCode) IsFatal() bool {
	return c == ErrConfig || c == ErrFilesystem
}

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first AppError in err's chain,
// or ErrInternal when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

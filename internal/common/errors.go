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

// Error codes, one per failure class of a document or of startup.
const (
	CodeConfig            = "CONFIG_ERROR"
	CodeUnsupported       = "UNSUPPORTED"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeFallbackExhausted = "FALLBACK_EXHAUSTED"
	CodeRequestFailed     = "REQUEST_FAILED"
	CodeWriteFailed       = "WRITE_FAILED"
	CodeInternal          = "INTERNAL"
)

// Common application errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnsupported        = errors.New("unsupported document")
	ErrExtraction         = errors.New("extraction failed")
	ErrNoImages           = errors.New("no extraction possible: no images found")
	ErrRequestFailed      = errors.New("structured-info request failed")
	ErrWriteFailed        = errors.New("write failed")
	ErrInternal           = errors.New("internal error")
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

// Classify maps an error onto its failure code.
func Classify(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoImages):
		return CodeFallbackExhausted
	case errors.Is(err, ErrRequestFailed):
		return CodeRequestFailed
	case errors.Is(err, ErrWriteFailed):
		return CodeWriteFailed
	case errors.Is(err, ErrUnsupported):
		return CodeUnsupported
	case errors.Is(err, ErrExtraction):
		return CodeExtractionFailed
	case errors.Is(err, ErrMissingCredentials), errors.Is(err, ErrInvalidInput):
		return CodeConfig
	default:
		return CodeInternal
	}
}

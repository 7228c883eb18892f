package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message,
// so sentinels still match after WithCause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithCause returns a copy of e carrying err as its cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeUnsupported      = "UNSUPPORTED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question is empty")
	ErrEmptyDocumentText    = NewDomainError(ErrCodeValidation, "document text is empty")
	ErrInvalidPage          = NewDomainError(ErrCodeValidation, "page must be >= 1")
	ErrInvalidPageSize      = NewDomainError(ErrCodeValidation, "page_size must be >= 1")
	ErrInvalidJobStatus     = NewDomainError(ErrCodeValidation, "invalid extend job status")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound  = NewDomainError(ErrCodeNotFound, "document not found")
	ErrFaqNotFound       = NewDomainError(ErrCodeNotFound, "faq not found")
	ErrExtendJobNotFound = NewDomainError(ErrCodeNotFound, "extend job not found")
)

// Generation errors
var (
	ErrGenerationFailed = NewDomainError(ErrCodeGenerationFailed, "generation failed")
	ErrUnparseableFAQ   = NewDomainError(ErrCodeGenerationFailed, "model output contained no Q/A pairs")
)

// Operation errors
var (
	ErrUnsupportedFileType  = NewDomainError(ErrCodeUnsupported, "file type not supported")
	ErrExtendQueueFull      = NewDomainError(ErrCodeInternalError, "extension queue is full")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
	ErrInvalidAPIKey        = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

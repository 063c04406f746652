package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeSession      = "SESSION_UNAVAILABLE"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeExtraction   = "EXTRACTION_FAILED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// SessionError reports that the browser process could not serve a page.
func SessionError(message string, err error) *ScrapeError {
	return NewScrapeError(ErrCodeSession, message, err)
}

// NavigationError reports that a page failed to load or settle.
func NavigationError(message string, err error) *ScrapeError {
	return NewScrapeError(ErrCodeNavigation, message, err)
}

// ExtractionError reports missing structured data, an unresolvable
// mandatory field or a missing DOM anchor.
func ExtractionError(message string, err error) *ScrapeError {
	return NewScrapeError(ErrCodeExtraction, message, err)
}

// ErrorCode returns the code of the first ScrapeError in err's chain, or
// ErrCodeInternal.
func ErrorCode(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether err left the browser restarted, in which case
// the whole operation may be attempted again from scratch.
func IsRetryable(err error) bool {
	switch ErrorCode(err) {
	case ErrCodeSession, ErrCodeNavigation:
		return true
	default:
		return false
	}
}

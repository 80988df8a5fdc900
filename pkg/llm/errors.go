package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an LLM failure. Types are attached where the
// provider error is first seen, so no caller has to sniff message text.
type ErrorType string

const (
	ErrorTypeRateLimited     ErrorType = "rate_limited"
	ErrorTypeUnavailable     ErrorType = "unavailable"
	ErrorTypeAuth            ErrorType = "auth"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeInvalidResponse ErrorType = "invalid_response"
	ErrorTypeUnknown         ErrorType = "unknown"
)

// Error is a structured LLM error with classification.
type Error struct {
	Type       ErrorType
	Message    string
	Retryable  bool // Whether another model may succeed
	Cause      error
	StatusCode int    // HTTP status code if applicable
	ModelName  string // Model name if known
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.ModelName != "" {
		msg = fmt.Sprintf("%s (model=%s)", msg, e.ModelName)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// newStatusError builds a classified error from an HTTP status code.
func newStatusError(model string, statusCode int, cause error) *Error {
	e := &Error{
		Message:    http.StatusText(statusCode),
		Cause:      cause,
		StatusCode: statusCode,
		ModelName:  model,
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimited
		e.Retryable = true
	case statusCode == http.StatusServiceUnavailable:
		e.Type = ErrorTypeUnavailable
		e.Retryable = true
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Type = ErrorTypeAuth
	case statusCode >= 500:
		e.Type = ErrorTypeUnavailable
		e.Retryable = true
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}

// IsTemporary reports whether err indicates a transient availability
// problem (rate limit or outage) that warrants a model cooldown and a
// fallback attempt.
func IsTemporary(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// Package apperrors defines the error kinds used across the pipeline.
// Kinds are attached at the point of failure so callers never infer a
// failure category from message text.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindValidationRejected means the SQL failed static safety checks.
	// Execution is skipped; the caller maps this to a generic message.
	KindValidationRejected Kind = "validation_rejected"

	// KindExecutionFailed means the engine raised (syntax, type
	// mismatch, missing column).
	KindExecutionFailed Kind = "execution_failed"

	// KindTimeout means the executor hit its wall-clock limit.
	KindTimeout Kind = "timeout"

	// KindInvariantViolated means a post-execution sanity check failed.
	// Fatal to the request and logged distinctly: it signals an engine
	// defect or a shape misclassification, not an expected path.
	KindInvariantViolated Kind = "invariant_violated"

	// KindGenerationFailed means the LLM could not produce a candidate
	// query.
	KindGenerationFailed Kind = "generation_failed"

	// KindVisualizationDegraded means a metadata/eligibility/chart
	// stage failed. Never fatal: the textual answer path is unaffected.
	KindVisualizationDegraded Kind = "visualization_degraded"
)

// Error is a kind-tagged pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a kind-tagged error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a kind-tagged error around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or the empty kind when err carries no
// classification.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

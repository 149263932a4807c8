package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData indicates an analysis has fewer data points than
	// it requires. Analyses report this inside their results rather than
	// aborting the run.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrSourceUnavailable indicates a paper source API could not be reached
	// or returned a server-side failure.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates a paper source API rejected a request due to
	// rate limiting.
	ErrRateLimited = errors.New("rate limited")
)

// InsufficientDataError provides details about an analysis that had too few
// data points to run.
type InsufficientDataError struct {
	Analysis string
	Needed   int
	Got      int
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d, got %d", e.Analysis, e.Needed, e.Got)
}

// Unwrap returns ErrInsufficientData for errors.Is checks.
func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// NewInsufficientDataError creates an InsufficientDataError.
func NewInsufficientDataError(analysis string, needed, got int) *InsufficientDataError {
	return &InsufficientDataError{Analysis: analysis, Needed: needed, Got: got}
}

// SourceError wraps a failure from a specific paper source API.
type SourceError struct {
	Source     SourceType
	Operation  string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s failed with status %d: %v", e.Source, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Source, e.Operation, e.Err)
}

// Unwrap returns the wrapped error for errors.Is and errors.As checks.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a SourceError.
func NewSourceError(source SourceType, operation string, statusCode int, err error) *SourceError {
	return &SourceError{Source: source, Operation: operation, StatusCode: statusCode, Err: err}
}

// ValidationError describes a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap returns ErrInvalidInput for errors.Is checks.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

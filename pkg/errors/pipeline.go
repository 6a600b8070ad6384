package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a classified pipeline error.
type ErrorCode string

const (
	ErrTimeout               ErrorCode = "timeout"
	ErrContextCancelled      ErrorCode = "context_cancelled"
	ErrParseError            ErrorCode = "parse_error"
	ErrEmptyContent          ErrorCode = "empty_content"
	ErrPhaseDependencyFailed ErrorCode = "phase_dependency_failed"
	ErrDuplicateRecord       ErrorCode = "duplicate_record"
	ErrResolutionFailed      ErrorCode = "resolution_failed"
	ErrConservationViolation ErrorCode = "conservation_violation"
	ErrOrphanRecord          ErrorCode = "orphan_record"
	ErrStorageError          ErrorCode = "storage_error"
	ErrProcessingError       ErrorCode = "processing_error"
)

// PipelineError is a structured error for pipeline failures.
type PipelineError struct {
	Code     ErrorCode
	Phase    string
	Message  string
	Duration time.Duration
	Timeout  time.Duration
	Cause    error
}

func (e *PipelineError) Error() string {
	if e.Timeout > 0 && e.Duration > 0 {
		return fmt.Sprintf("%s: %s timed out after %s (limit: %s)", e.Code, e.Phase, e.Duration.Truncate(time.Second), e.Timeout.Truncate(time.Second))
	}
	if e.Phase != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Phase, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// ClassifyError inspects an error and returns a *PipelineError with the appropriate code.
// If the error doesn't match any known pattern, it returns a PipelineError with ErrProcessingError.
func ClassifyError(err error, phase string) *PipelineError {
	if err == nil {
		return nil
	}

	pe := &PipelineError{
		Phase: phase,
		Cause: err,
	}

	// Check for context deadline exceeded (timeout)
	if errors.Is(err, context.DeadlineExceeded) {
		pe.Code = ErrTimeout
		pe.Message = "operation timed out"
		return pe
	}

	// Check for context cancelled
	if errors.Is(err, context.Canceled) {
		pe.Code = ErrContextCancelled
		pe.Message = "operation cancelled"
		return pe
	}

	// Domain sentinels classify directly.
	switch {
	case errors.Is(err, ErrConservation):
		pe.Code = ErrConservationViolation
		pe.Message = err.Error()
		return pe
	case errors.Is(err, ErrOrphanMention):
		pe.Code = ErrOrphanRecord
		pe.Message = err.Error()
		return pe
	case errors.Is(err, ErrUnmappedLabel):
		pe.Code = ErrResolutionFailed
		pe.Message = err.Error()
		return pe
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		pe.Code = ErrDuplicateRecord
		pe.Message = err.Error()
		return pe
	case errors.Is(err, ErrInvalidState):
		pe.Code = ErrPhaseDependencyFailed
		pe.Message = err.Error()
		return pe
	}

	// Check error message patterns
	msg := err.Error()
	lower := strings.ToLower(msg)

	// Empty content patterns
	if strings.Contains(lower, "empty content") || strings.Contains(lower, "no mentions") || strings.Contains(lower, "no content") {
		pe.Code = ErrEmptyContent
		pe.Message = msg
		return pe
	}

	// Parse failure patterns
	if strings.Contains(lower, "unmarshal") || strings.Contains(lower, "unexpected end of json") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "yaml:") {
		pe.Code = ErrParseError
		pe.Message = msg
		return pe
	}

	// Phase dependency patterns
	if strings.Contains(lower, "upstream") || strings.Contains(lower, "dependency failed") || strings.Contains(lower, "prerequisite") {
		pe.Code = ErrPhaseDependencyFailed
		pe.Message = msg
		return pe
	}

	// Storage patterns
	if strings.Contains(lower, "database") || strings.Contains(lower, "sqlite") || strings.Contains(lower, "constraint") || strings.Contains(lower, "transaction") {
		pe.Code = ErrStorageError
		pe.Message = msg
		return pe
	}

	// Default to processing error
	pe.Code = ErrProcessingError
	pe.Message = msg
	return pe
}

// IsTimeout returns true if the error is a timeout error.
func IsTimeout(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == ErrTimeout
	}
	return false
}

// IsErrorRetryable returns true if the error is likely transient and worth retrying.
// This function checks the error code using the ErrorCodeRegistry.
func IsErrorRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		if info, ok := ErrorCodeRegistry[pe.Code]; ok {
			return info.Retryable
		}
		// Default to non-retryable for unknown codes
		return false
	}
	return false
}

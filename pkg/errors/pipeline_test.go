package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError_Nil(t *testing.T) {
	result := ClassifyError(nil, "test-phase")
	if result != nil {
		t.Errorf("Expected nil for nil error, got %v", result)
	}
}

func TestClassifyError_DeadlineExceeded(t *testing.T) {
	err := context.DeadlineExceeded
	result := ClassifyError(err, "test-phase")

	if result == nil {
		t.Fatal("Expected non-nil PipelineError")
	}
	if result.Code != ErrTimeout {
		t.Errorf("Expected ErrTimeout, got %s", result.Code)
	}
	if result.Phase != "test-phase" {
		t.Errorf("Expected phase 'test-phase', got %s", result.Phase)
	}
	if result.Message != "operation timed out" {
		t.Errorf("Expected 'operation timed out', got %s", result.Message)
	}
	if result.Cause != err {
		t.Errorf("Expected cause to be original error")
	}
}

func TestClassifyError_Canceled(t *testing.T) {
	err := context.Canceled
	result := ClassifyError(err, "test-phase")

	if result == nil {
		t.Fatal("Expected non-nil PipelineError")
	}
	if result.Code != ErrContextCancelled {
		t.Errorf("Expected ErrContextCancelled, got %s", result.Code)
	}
	if result.Message != "operation cancelled" {
		t.Errorf("Expected 'operation cancelled', got %s", result.Message)
	}
}

func TestClassifyError_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"conservation", Newf(ErrConservation, "person_mentions has 10 rows, staged 12"), ErrConservationViolation},
		{"orphan", Newf(ErrOrphanMention, "junction row 5 references missing person"), ErrOrphanRecord},
		{"unmapped label", Newf(ErrUnmappedLabel, "no alias for %q", "rick"), ErrResolutionFailed},
		{"conflict", ErrConflict, ErrDuplicateRecord},
		{"already exists", Newf(ErrAlreadyExists, "entity rick_lagina"), ErrDuplicateRecord},
		{"invalid state", Newf(ErrInvalidState, "dedupe has not run"), ErrPhaseDependencyFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err, "verify")
			if result == nil {
				t.Fatal("Expected non-nil PipelineError")
			}
			if result.Code != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result.Code)
			}
			if !errors.Is(result, tt.err) {
				t.Errorf("Expected classified error to unwrap to original")
			}
		})
	}
}

func TestClassifyError_ParseError(t *testing.T) {
	tests := []struct {
		name     string
		errorMsg string
	}{
		{"json unmarshal", "json: cannot unmarshal string into Go value of type float64"},
		{"truncated json", "unexpected end of JSON input"},
		{"invalid character", "invalid character '}' looking for beginning of value"},
		{"yaml", "yaml: line 3: mapping values are not allowed in this context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(errors.New(tt.errorMsg), "ingest")
			if result == nil {
				t.Fatal("Expected non-nil PipelineError")
			}
			if result.Code != ErrParseError {
				t.Errorf("Expected ErrParseError for '%s', got %s", tt.errorMsg, result.Code)
			}
		})
	}
}

func TestClassifyError_StorageError(t *testing.T) {
	tests := []struct {
		name     string
		errorMsg string
	}{
		{"sqlite busy", "sqlite: database is locked"},
		{"constraint", "constraint failed: FOREIGN KEY constraint failed"},
		{"transaction", "cannot start a transaction within a transaction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(errors.New(tt.errorMsg), "export")
			if result == nil {
				t.Fatal("Expected non-nil PipelineError")
			}
			if result.Code != ErrStorageError {
				t.Errorf("Expected ErrStorageError for '%s', got %s", tt.errorMsg, result.Code)
			}
		})
	}
}

func TestClassifyError_Default(t *testing.T) {
	result := ClassifyError(errors.New("something odd happened"), "dedupe")
	if result == nil {
		t.Fatal("Expected non-nil PipelineError")
	}
	if result.Code != ErrProcessingError {
		t.Errorf("Expected ErrProcessingError, got %s", result.Code)
	}
}

func TestPipelineError_Error(t *testing.T) {
	pe := &PipelineError{
		Code:    ErrConservationViolation,
		Phase:   "verify",
		Message: "person_mentions has 84999 rows, staged 85000",
	}
	want := "conservation_violation: verify: person_mentions has 84999 rows, staged 85000"
	if got := pe.Error(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying: %w", ErrOrphanMention)
	pe := ClassifyError(cause, "verify")
	if !errors.Is(pe, ErrOrphanMention) {
		t.Error("Expected errors.Is to find the orphan sentinel through the chain")
	}
}

func TestIsErrorRetryable(t *testing.T) {
	storage := ClassifyError(errors.New("database is locked"), "export")
	if !IsErrorRetryable(storage) {
		t.Error("Expected storage errors to be retryable")
	}
	orphan := ClassifyError(ErrOrphanMention, "verify")
	if IsErrorRetryable(orphan) {
		t.Error("Expected orphan errors to be non-retryable")
	}
	if IsErrorRetryable(errors.New("plain error")) {
		t.Error("Expected unclassified error to be non-retryable")
	}
}

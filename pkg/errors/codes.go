package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	Retryable       bool
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrTimeout: {
		Code:            ErrTimeout,
		Retryable:       true,
		Description:     "Operation exceeded time limit",
		SuggestedAction: "Re-run the phase; large source sets may need more time",
	},
	ErrContextCancelled: {
		Code:            ErrContextCancelled,
		Retryable:       false,
		Description:     "Operation cancelled by user or system",
		SuggestedAction: "Check if cancellation was intentional, or investigate upstream cancellation",
	},
	ErrParseError: {
		Code:            ErrParseError,
		Retryable:       false,
		Description:     "Source file parsing failed (malformed structure)",
		SuggestedAction: "Inspect the named source file; dedupe skips bad records, ingest does not",
	},
	ErrEmptyContent: {
		Code:            ErrEmptyContent,
		Retryable:       false,
		Description:     "Source file is empty or yielded no usable records",
		SuggestedAction: "Verify extraction output exists: canonize db stats",
	},
	ErrPhaseDependencyFailed: {
		Code:            ErrPhaseDependencyFailed,
		Retryable:       false,
		Description:     "A required earlier phase has not completed",
		SuggestedAction: "Run the missing phase first, or use: canonize run",
	},
	ErrDuplicateRecord: {
		Code:            ErrDuplicateRecord,
		Retryable:       false,
		Description:     "Record already exists (re-run over a populated database)",
		SuggestedAction: "Phases replace their own tables; this usually means a partial earlier run",
	},
	ErrResolutionFailed: {
		Code:            ErrResolutionFailed,
		Retryable:       false,
		Description:     "A mention label could not be bound to a canonical entity",
		SuggestedAction: "Add the label to the overrides file or re-run dedupe",
	},
	ErrConservationViolation: {
		Code:            ErrConservationViolation,
		Retryable:       false,
		Description:     "Junction row count does not match staged mention count",
		SuggestedAction: "Re-run dedupe from a clean database: canonize db reset && canonize run",
	},
	ErrOrphanRecord: {
		Code:            ErrOrphanRecord,
		Retryable:       false,
		Description:     "Junction row references a canonical entity that does not exist",
		SuggestedAction: "Inspect the verify report: canonize verify --format json",
	},
	ErrStorageError: {
		Code:            ErrStorageError,
		Retryable:       true,
		Description:     "Database operation failed",
		SuggestedAction: "Check the database file is writable and not locked by another process",
	},
	ErrProcessingError: {
		Code:            ErrProcessingError,
		Retryable:       false,
		Description:     "Unclassified processing error",
		SuggestedAction: "Run with --debug for full detail",
	},
}

// IsRetryable returns true if the given error code represents a transient, retryable error.
func IsRetryable(code ErrorCode) bool {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Retryable
	}
	return false
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Run with --debug for full detail"
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}

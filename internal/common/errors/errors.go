// Package errors provides standardized error handling for the matching pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeBriefNotFound    ErrorCode = "BRIEF_NOT_FOUND"
	ErrCodeAlreadyMatched   ErrorCode = "ALREADY_MATCHED"

	ErrCodeRetrievalUnavailable ErrorCode = "RETRIEVAL_UNAVAILABLE"
	ErrCodeNoEligibleDesigners  ErrorCode = "NO_ELIGIBLE_DESIGNERS"

	ErrCodeAITransient        ErrorCode = "AI_TRANSIENT"
	ErrCodeAIQuotaExhausted   ErrorCode = "AI_QUOTA_EXHAUSTED"
	ErrCodeAIMalformedRequest ErrorCode = "AI_MALFORMED_REQUEST"

	ErrCodePersistenceConflict ErrorCode = "PERSISTENCE_CONFLICT"
	ErrCodePersistenceFailed   ErrorCode = "PERSISTENCE_FAILED"

	ErrCodeTimeout ErrorCode = "TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// MatchError represents a structured matching engine error.
type MatchError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("MatchError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two MatchErrors by code.
func (e *MatchError) Is(target error) bool {
	var me *MatchError
	if errors.As(target, &me) {
		return e.Code == me.Code
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or empty string when err is not a MatchError.
func CodeOf(err error) ErrorCode {
	var me *MatchError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable brief validation error.
func NewValidationError(details string) *MatchError {
	return &MatchError{
		Code:      ErrCodeValidationFailed,
		Message:   "Brief failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBriefNotFoundError creates a non-retryable missing brief error.
func NewBriefNotFoundError(briefID string) *MatchError {
	return &MatchError{
		Code:      ErrCodeBriefNotFound,
		Message:   "Brief not found",
		Details:   fmt.Sprintf("briefId: %s", briefID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadyMatchedError signals that the brief already holds a non-expired match.
func NewAlreadyMatchedError(briefID, matchID string) *MatchError {
	return &MatchError{
		Code:      ErrCodeAlreadyMatched,
		Message:   "Brief already has a non-expired match",
		Details:   fmt.Sprintf("briefId: %s, matchId: %s", briefID, matchID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetrievalUnavailableError creates an error for an unreachable embedding store.
// The whole request fails loudly; there is no fallback to a lower-quality signal.
func NewRetrievalUnavailableError(err error) *MatchError {
	return &MatchError{
		Code:      ErrCodeRetrievalUnavailable,
		Message:   "Embedding store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoEligibleDesignersError is the terminal business outcome of an empty eligible set.
func NewNoEligibleDesignersError(briefID string) *MatchError {
	return &MatchError{
		Code:      ErrCodeNoEligibleDesigners,
		Message:   "No designer passed the eligibility gates",
		Details:   fmt.Sprintf("briefId: %s", briefID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAITransientError creates a retryable AI provider error.
func NewAITransientError(err error) *MatchError {
	return &MatchError{
		Code:      ErrCodeAITransient,
		Message:   "AI provider transient failure",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIQuotaError creates the non-retryable quota-exhaustion outcome.
// Callers degrade to rule-derived reasoning instead of failing the match.
func NewAIQuotaError(details string) *MatchError {
	return &MatchError{
		Code:      ErrCodeAIQuotaExhausted,
		Message:   "AI provider quota exhausted",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIMalformedRequestError creates a non-retryable auth/bad-request AI error.
func NewAIMalformedRequestError(err error) *MatchError {
	return &MatchError{
		Code:      ErrCodeAIMalformedRequest,
		Message:   "AI provider rejected the request",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceConflictError signals a lost create-if-absent race. Resolved
// internally by returning the already-persisted record, never surfaced.
func NewPersistenceConflictError(briefID string) *MatchError {
	return &MatchError{
		Code:      ErrCodePersistenceConflict,
		Message:   "Another request already persisted a match for this brief",
		Details:   fmt.Sprintf("briefId: %s", briefID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a retryable database write error.
func NewPersistenceFailedError(err error) *MatchError {
	return &MatchError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Match persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a deadline-exceeded error for the named stage.
func NewTimeoutError(stage string) *MatchError {
	return &MatchError{
		Code:      ErrCodeTimeout,
		Message:   "Deadline exceeded",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// callerVisible lists the codes allowed to escape the orchestrator.
var callerVisible = map[ErrorCode]bool{
	ErrCodeValidationFailed:     true,
	ErrCodeBriefNotFound:        true,
	ErrCodeAlreadyMatched:       true,
	ErrCodeRetrievalUnavailable: true,
	ErrCodeNoEligibleDesigners:  true,
	ErrCodeTimeout:              true,
}

// IsCallerVisible reports whether the code may surface to the caller.
// Everything else is handled or degraded inside the orchestrator.
func IsCallerVisible(code ErrorCode) bool {
	return callerVisible[code]
}

// IsRetryable reports whether the caller may usefully retry the whole request.
func IsRetryable(err error) bool {
	var me *MatchError
	if errors.As(err, &me) {
		return me.Retryable
	}
	return false
}

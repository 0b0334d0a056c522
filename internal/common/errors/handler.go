package errors

import (
	"errors"
	"net/http"
	"time"
)

// Normalize ensures we always have a MatchError to report.
func Normalize(err error) *MatchError {
	var me *MatchError
	if errors.As(err, &me) {
		return me
	}
	return &MatchError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps engine error codes to HTTP statuses for the thin route layer.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeBriefNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyMatched:
		return http.StatusConflict
	case ErrCodeNoEligibleDesigners:
		return http.StatusUnprocessableEntity
	case ErrCodeRetrievalUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCodeMatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("pipeline: %w", NewBriefNotFoundError("brief-123"))

	assert.True(t, IsCode(err, ErrCodeBriefNotFound))
	assert.False(t, IsCode(err, ErrCodeAlreadyMatched))
	assert.Equal(t, ErrCodeBriefNotFound, CodeOf(err))
}

func TestRetryableFlags(t *testing.T) {
	assert.True(t, IsRetryable(NewAITransientError(fmt.Errorf("reset"))))
	assert.True(t, IsRetryable(NewRetrievalUnavailableError(fmt.Errorf("down"))))
	assert.False(t, IsRetryable(NewAIQuotaError("rate limited")))
	assert.False(t, IsRetryable(NewValidationError("bad brief")))
	assert.False(t, IsRetryable(fmt.Errorf("plain error")))
}

func TestNormalize(t *testing.T) {
	t.Run("passes through known codes", func(t *testing.T) {
		me := Normalize(NewNoEligibleDesignersError("brief-123"))
		assert.Equal(t, ErrCodeNoEligibleDesigners, me.Code)
	})

	t.Run("wraps unknown errors", func(t *testing.T) {
		me := Normalize(fmt.Errorf("disk on fire"))
		assert.Equal(t, ErrCodeInternal, me.Code)
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeBriefNotFound, http.StatusNotFound},
		{ErrCodeAlreadyMatched, http.StatusConflict},
		{ErrCodeNoEligibleDesigners, http.StatusUnprocessableEntity},
		{ErrCodeRetrievalUnavailable, http.StatusServiceUnavailable},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatus(tt.code), string(tt.code))
	}
}

func TestCallerVisibility(t *testing.T) {
	visible := []ErrorCode{
		ErrCodeValidationFailed, ErrCodeBriefNotFound, ErrCodeAlreadyMatched,
		ErrCodeRetrievalUnavailable, ErrCodeNoEligibleDesigners, ErrCodeTimeout,
	}
	for _, code := range visible {
		assert.True(t, IsCallerVisible(code), string(code))
	}

	internal := []ErrorCode{
		ErrCodeAITransient, ErrCodeAIQuotaExhausted, ErrCodeAIMalformedRequest,
		ErrCodePersistenceConflict, ErrCodePersistenceFailed,
	}
	for _, code := range internal {
		assert.False(t, IsCallerVisible(code), string(code))
	}
}

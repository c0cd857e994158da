package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLokaliseErrorRendering(t *testing.T) {
	err := NewLokaliseError("X", 404).WithDetails(map[string]any{"reason": "fake"})
	assert.Equal(t, "LokaliseError: X (Code: 404) | Details: reason: fake", err.Error())
}

func TestLokaliseErrorRenderingWithoutCode(t *testing.T) {
	err := NewLokaliseError("something broke", 0)
	assert.Equal(t, "LokaliseError: something broke", err.Error())
}

func TestLokaliseErrorRenderingMultipleDetails(t *testing.T) {
	err := NewLokaliseError("nope", 500).WithDetails(map[string]any{
		"b_second": 2,
		"a_first":  "one",
	})
	// Details render in sorted key order so the output is deterministic.
	assert.Equal(t, "LokaliseError: nope (Code: 500) | Details: a_first: one, b_second: 2", err.Error())
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{408, true},
		{429, true},
		{400, false},
		{404, false},
		{500, false},
		{0, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("code_%d", tt.code), func(t *testing.T) {
			err := NewLokaliseError("x", tt.code)
			assert.Equal(t, tt.want, err.Retryable())
			assert.Equal(t, tt.want, IsRetryable(err))
		})
	}
}

func TestIsRetryableNonRemoteError(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestMaxRetriesErrorPreservesContext(t *testing.T) {
	orig := NewLokaliseError("Too many requests", 429).
		WithDetails(map[string]any{"retry_after": 30})

	wrapped := NewMaxRetriesError(orig)
	require.ErrorIs(t, wrapped, ErrMaxRetriesReached)
	assert.Equal(t, 429, wrapped.Code)
	assert.Equal(t, orig.Details, wrapped.Details)
	assert.Equal(t,
		"LokaliseError: Maximum retries reached: Too many requests (Code: 429) | Details: retry_after: 30",
		wrapped.Error())
}

func TestTimeoutErrorCarriesReason(t *testing.T) {
	err := NewTimeoutError("download timed out after %s", "30s")
	assert.Equal(t, "TimeoutError: download timed out after 30s | Details: reason: timeout", err.Error())
	assert.True(t, IsTimeout(err))
	assert.False(t, IsTimeout(errors.New("other")))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("maxRetries must be >= 0, got %d", -1)
	assert.Equal(t, "ValidationError: maxRetries must be >= 0, got -1", err.Error())
	assert.True(t, IsValidation(err))
}

func TestSecurityError(t *testing.T) {
	err := NewSecurityError("malicious archive entry %q", "../../etc/passwd")
	assert.Equal(t, `SecurityError: malicious archive entry "../../etc/passwd"`, err.Error())
	assert.True(t, IsSecurity(err))
	assert.False(t, IsSecurity(errors.New("other")))
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewLokaliseError("request failed", 0).WithCause(cause)
	assert.ErrorIs(t, err, cause)

	var le *LokaliseError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", err), &le)
	assert.Equal(t, "request failed", le.Message)
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestFlagDefinition_HasRollout(t *testing.T) {
	tests := []struct {
		name string
		flag FlagDefinition
		want bool
	}{
		{
			name: "both percentage and seed",
			flag: FlagDefinition{Key: "f", RolloutPercentage: intPtr(50), RolloutSeed: strPtr("s")},
			want: true,
		},
		{
			name: "percentage only",
			flag: FlagDefinition{Key: "f", RolloutPercentage: intPtr(50)},
			want: false,
		},
		{
			name: "seed only",
			flag: FlagDefinition{Key: "f", RolloutSeed: strPtr("s")},
			want: false,
		},
		{
			name: "neither",
			flag: FlagDefinition{Key: "f"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flag.HasRollout())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("flag key is required")

	assert.EqualError(t, err, "validation error: flag key is required")
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("other")))
	assert.False(t, IsValidationError(nil))
}

func TestAuthenticationError(t *testing.T) {
	err := NewAuthenticationError("invalid API key")

	assert.EqualError(t, err, "authentication error: invalid API key")
	assert.True(t, IsAuthenticationError(err))
	assert.False(t, IsAuthenticationError(NewValidationError("x")))
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("failed to connect to API", cause)

	assert.EqualError(t, err, "network error: failed to connect to API: connection refused")
	assert.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, cause)
}

func TestNetworkError_NoCause(t *testing.T) {
	err := NewNetworkError("request timed out", nil)

	assert.EqualError(t, err, "network error: request timed out")
	assert.True(t, IsNetworkError(err))
}

func TestServiceError(t *testing.T) {
	err := NewServiceError(500, "internal server error")

	assert.EqualError(t, err, "service error: HTTP 500: internal server error")
	assert.True(t, IsServiceError(err))
	assert.False(t, IsServiceError(NewNetworkError("x", nil)))
}

func TestServiceError_NoStatus(t *testing.T) {
	err := NewServiceError(0, "malformed response body")

	assert.EqualError(t, err, "service error: malformed response body")
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	inner := NewNetworkError("timeout", nil)
	wrapped := fmt.Errorf("refresh failed: %w", inner)

	assert.True(t, IsNetworkError(wrapped))
	assert.False(t, IsServiceError(wrapped))
}

package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_MatchesKind(t *testing.T) {
	err := fmt.Errorf("search: %w", &ProviderError{Kind: KindRateLimit, Provider: "tavily", StatusCode: 429, Message: "rate limit exceeded"})

	assert.True(t, errors.Is(err, ErrRateLimit))
	assert.False(t, errors.Is(err, ErrAPI))
	assert.False(t, errors.Is(err, ErrAuthentication))
	assert.Equal(t, KindRateLimit, KindOf(err))
}

func TestProviderError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &ProviderError{Kind: KindAPI, Provider: "openai", Message: "request error", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("OPENAI_API_KEY")

	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Equal(t, "config_error", KindConfig.String())
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindAPI, KindOf(fmt.Errorf("wrapped: %w", ErrAPI)))
}

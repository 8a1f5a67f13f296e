package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestNewGeminiClientDefaults(t *testing.T) {
	client := NewGeminiClient()
	assert.Equal(t, DefaultModel, client.model)
	assert.Nil(t, client.temperature)
	assert.Equal(t, 0, client.maxRetries)
	assert.Nil(t, client.limiter)
}

func TestNewGeminiClientWithOptions(t *testing.T) {
	client := NewGeminiClient(
		WithBaseURL("http://localhost:9999/v1"),
		WithAPIKey("test-key"),
		WithModel("gemini-1.5-pro"),
		WithTemperature(0.2),
	)
	assert.Equal(t, "gemini-1.5-pro", client.model)
	assert.NotNil(t, client.temperature)
	assert.Equal(t, 0.2, *client.temperature)
}

func TestApplyDefaultsUsesClientModel(t *testing.T) {
	client := NewGeminiClient(WithModel("gemini-1.5-pro"))

	req := client.applyDefaults(GenerateRequest{Prompt: "hello"})
	assert.Equal(t, "gemini-1.5-pro", req.Model)
}

func TestApplyDefaultsRequestModelTakesPrecedence(t *testing.T) {
	client := NewGeminiClient(WithModel("gemini-1.5-pro"))

	req := client.applyDefaults(GenerateRequest{Prompt: "hello", Model: "gemini-1.5-flash"})
	assert.Equal(t, "gemini-1.5-flash", req.Model)
}

func TestApplyDefaultsTemperature(t *testing.T) {
	client := NewGeminiClient(WithTemperature(0.8))

	req := client.applyDefaults(GenerateRequest{Prompt: "hello"})
	assert.Equal(t, 0.8, req.Temperature)

	req = client.applyDefaults(GenerateRequest{Prompt: "hello", Temperature: 0.3})
	assert.Equal(t, 0.3, req.Temperature)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{
			name: "unauthorized",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized},
			kind: KindAuthentication,
		},
		{
			name: "forbidden",
			err:  &openai.APIError{HTTPStatusCode: http.StatusForbidden},
			kind: KindAuthentication,
		},
		{
			name: "rate limited",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			kind: KindRateLimit,
		},
		{
			name: "server error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadGateway},
			kind: KindUnavailable,
		},
		{
			name: "client error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadRequest},
			kind: KindUnknown,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			kind: KindTimeout,
		},
		{
			name: "wrapped deadline",
			err:  fmt.Errorf("call failed: %w", context.DeadlineExceeded),
			kind: KindTimeout,
		},
		{
			name: "transport failure",
			err:  errors.New("dial tcp: connection refused"),
			kind: KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := classifyError(tt.err)
			assert.Equal(t, tt.kind, pe.Kind)
		})
	}
}

func TestClassifyErrorPassesThroughProviderError(t *testing.T) {
	orig := &ProviderError{Kind: KindMalformedResponse, Message: "no choices returned"}
	assert.Same(t, orig, classifyError(orig))
	assert.Same(t, orig, classifyError(fmt.Errorf("wrapped: %w", orig)))
}

func TestProviderErrorRetryable(t *testing.T) {
	assert.True(t, (&ProviderError{Kind: KindRateLimit}).Retryable())
	assert.True(t, (&ProviderError{Kind: KindUnavailable}).Retryable())
	assert.False(t, (&ProviderError{Kind: KindAuthentication}).Retryable())
	assert.False(t, (&ProviderError{Kind: KindMalformedResponse}).Retryable())
	assert.False(t, (&ProviderError{Kind: KindTimeout}).Retryable())
}

func TestProviderErrorMessage(t *testing.T) {
	pe := &ProviderError{Kind: KindRateLimit, Message: "rate limit exceeded"}
	assert.Contains(t, pe.Error(), "RateLimited")
	assert.Contains(t, pe.Error(), "rate limit exceeded")
}

func TestTokenCounterFallbackEstimate(t *testing.T) {
	// Counter without an encoding falls back to the words-based estimate.
	c := &TokenCounter{}
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 13, c.Count("one two three four five six seven eight nine ten"))
}

func TestSettingsValidate(t *testing.T) {
	s := &Settings{}
	assert.ErrorIs(t, s.Validate(), ErrCredentialMissing)

	s.APIKey = "key"
	assert.NoError(t, s.Validate())
}

func TestSettingsOptions(t *testing.T) {
	s := &Settings{APIKey: "key", BaseURL: "http://localhost:1234", Model: "gemini-1.5-pro"}

	client := NewGeminiClient(s.Options()...)
	assert.Equal(t, "gemini-1.5-pro", client.model)
}

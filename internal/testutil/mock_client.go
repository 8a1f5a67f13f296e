// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"strings"

	"github.com/promptlab/promptlab/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test packages.
type MockLLMClient struct {
	// Responses maps prompt substrings to canned response texts. The first
	// matching entry wins; iteration order is not defined, so keep keys
	// non-overlapping in tests.
	Responses map[string]string

	// DefaultResponse is returned when no entry in Responses matches.
	DefaultResponse string

	// Err, when set, is returned for every call.
	Err error

	// FailPromptContaining makes calls whose prompt contains the substring
	// return ErrForPrompt while other prompts succeed.
	FailPromptContaining string
	ErrForPrompt         error

	// TokenCount is the token count attached to successful responses.
	TokenCount int

	// Calls tracks the number of Generate invocations.
	Calls int

	// LastRequest stores the most recent request for inspection.
	LastRequest llm.GenerateRequest
}

func (m *MockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	m.Calls++
	m.LastRequest = req

	if m.Err != nil {
		return nil, m.Err
	}
	if m.FailPromptContaining != "" && strings.Contains(req.Prompt, m.FailPromptContaining) {
		err := m.ErrForPrompt
		if err == nil {
			err = &llm.ProviderError{Kind: llm.KindUnavailable, Message: "mock failure"}
		}
		return nil, err
	}

	text := m.DefaultResponse
	for key, resp := range m.Responses {
		if strings.Contains(req.Prompt, key) {
			text = resp
			break
		}
	}
	if text == "" {
		text = "mock response"
	}

	tokens := m.TokenCount
	if tokens == 0 {
		tokens = len(strings.Fields(text))
	}

	return &llm.GenerateResult{
		Text:         text,
		TokenCount:   tokens,
		LatencyMs:    1.5,
		Model:        req.Model,
		FinishReason: "stop",
	}, nil
}

package cmd

import (
	"fmt"

	"github.com/promptlab/promptlab/internal/llm"
)

// newLLMClientFromFlags creates an LLM client from common CLI flags layered
// over environment settings. A missing API key is a startup error so that a
// misconfigured credential fails before any variant is sent.
func newLLMClientFromFlags(endpoint, apiKey string) (llm.Client, error) {
	settings, err := llm.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load client settings: %w", err)
	}
	if apiKey != "" {
		settings.APIKey = apiKey
	}
	if endpoint != "" {
		settings.BaseURL = endpoint
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY or pass --api-key)", err)
	}
	return llm.NewGeminiClient(settings.Options()...), nil
}

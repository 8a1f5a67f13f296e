package llm

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates token counts for response texts when the provider
// does not report usage. It falls back to a words-based estimate when no
// BPE encoding is available (e.g. offline).
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter creates a counter for the given model. Gemini models are
// not in the tiktoken registry, so the gpt-4o encoding is used as a stand-in.
func NewTokenCounter(model string) *TokenCounter {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			return &TokenCounter{}
		}
	}
	return &TokenCounter{encoding: encoding}
}

// Count returns the token count for the text.
func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.encoding != nil {
		return len(c.encoding.Encode(text, nil, nil))
	}
	// Rough estimate used by the lab when the tokenizer is unavailable:
	// ~1.3 tokens per word.
	return int(float64(len(strings.Fields(text))) * 1.3)
}

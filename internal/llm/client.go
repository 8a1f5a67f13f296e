// Package llm wraps the Google Gemini generation API behind a small client
// interface. Gemini exposes an OpenAI-compatible surface, so the transport
// is the go-openai client pointed at the Gemini endpoint.
package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultModel is used when neither the request nor the client names one.
const DefaultModel = "gemini-1.5-flash"

// GenerateRequest describes a single generation call.
type GenerateRequest struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// GenerateResult holds the response text and the metadata the evaluation
// pipeline records per variant.
type GenerateResult struct {
	Text         string  `json:"text"`
	TokenCount   int     `json:"token_count"`
	LatencyMs    float64 `json:"latency_ms"`
	Model        string  `json:"model"`
	FinishReason string  `json:"finish_reason"`
}

// Client abstracts the generation endpoint.
type Client interface {
	// Generate sends one prompt and returns the response with metadata.
	// Failures are returned as *ProviderError so callers can distinguish
	// auth, rate-limit, and availability problems.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	client      *openai.Client
	model       string
	temperature *float64
	maxRetries  int
	retryDelay  time.Duration
	limiter     *rate.Limiter
	counter     *TokenCounter
}

// NewGeminiClient creates a client for the Gemini OpenAI-compatible endpoint.
func NewGeminiClient(opts ...Option) *GeminiClient {
	cfg := &clientConfig{
		baseURL:     DefaultBaseURL,
		apiKey:      "not-set",
		httpTimeout: 90 * time.Second,
		retryDelay:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	config := openai.DefaultConfig(cfg.apiKey)
	config.BaseURL = cfg.baseURL
	config.HTTPClient = &http.Client{Timeout: cfg.httpTimeout}

	model := cfg.model
	if model == "" {
		model = DefaultModel
	}

	return &GeminiClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: cfg.temperature,
		maxRetries:  cfg.maxRetries,
		retryDelay:  cfg.retryDelay,
		limiter:     cfg.limiter,
		counter:     NewTokenCounter(model),
	}
}

// Generate sends a single prompt. By default it calls once, matching the
// lab's behavior; bounded retry for transient failures is opt-in via
// WithMaxRetries.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	req = c.applyDefaults(req)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyError(err)
		}
	}

	var lastErr *ProviderError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, classifyError(ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		result, err := c.generateOnce(ctx, req)
		if err == nil {
			return result, nil
		}

		lastErr = classifyError(err)
		if !lastErr.Retryable() {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *GeminiClient) generateOnce(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	latency := float64(time.Since(start).Microseconds()) / 1000

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Kind: KindMalformedResponse, Message: "no choices returned"}
	}

	choice := resp.Choices[0]
	tokens := resp.Usage.CompletionTokens
	if tokens == 0 && choice.Message.Content != "" {
		tokens = c.counter.Count(choice.Message.Content)
	}

	return &GenerateResult{
		Text:         choice.Message.Content,
		TokenCount:   tokens,
		LatencyMs:    latency,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// applyDefaults applies client-level defaults where the request does not
// specify its own values.
func (c *GeminiClient) applyDefaults(req GenerateRequest) GenerateRequest {
	if req.Model == "" {
		req.Model = c.model
	}
	if req.Temperature == 0 && c.temperature != nil {
		req.Temperature = *c.temperature
	}
	return req
}

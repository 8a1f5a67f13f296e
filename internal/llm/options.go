package llm

import (
	"time"

	"golang.org/x/time/rate"
)

// clientConfig holds configuration for a GeminiClient.
type clientConfig struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
	httpTimeout time.Duration
	maxRetries  int
	retryDelay  time.Duration
	limiter     *rate.Limiter
}

// Option is a functional option for configuring a client.
type Option func(*clientConfig)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the default model name for requests.
// Per-request model settings in GenerateRequest take precedence.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithTemperature sets the default temperature for requests.
// Per-request temperature settings in GenerateRequest take precedence.
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) {
		c.temperature = &temp
	}
}

// WithHTTPTimeout sets the HTTP client timeout for a single call.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.httpTimeout = d
	}
}

// WithMaxRetries enables bounded retry for transient failures
// (rate limits and 5xx responses).
func WithMaxRetries(n int, delay time.Duration) Option {
	return func(c *clientConfig) {
		c.maxRetries = n
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithRateLimit throttles outgoing requests to at most one per interval.
func WithRateLimit(interval time.Duration) Option {
	return func(c *clientConfig) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

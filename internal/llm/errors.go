package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ErrorKind classifies provider failures so the caller can decide whether to
// skip a variant, retry, or abort the run.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthentication
	KindRateLimit
	KindUnavailable
	KindTimeout
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "AuthenticationFailed"
	case KindRateLimit:
		return "RateLimited"
	case KindUnavailable:
		return "ProviderUnavailable"
	case KindTimeout:
		return "Timeout"
	case KindMalformedResponse:
		return "MalformedResponse"
	default:
		return "Unknown"
	}
}

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRateLimit || e.Kind == KindUnavailable
}

// ErrCredentialMissing is returned at startup when no API key is configured.
var ErrCredentialMissing = errors.New("API key is not set (export GEMINI_API_KEY)")

// classifyError maps transport and API errors onto a ProviderError.
func classifyError(err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Kind: KindTimeout, Message: "request cancelled", Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized,
			apiErr.HTTPStatusCode == http.StatusForbidden:
			return &ProviderError{Kind: KindAuthentication, Message: "authentication rejected", Err: err}
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ProviderError{Kind: KindRateLimit, Message: "rate limit exceeded", Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ProviderError{Kind: KindUnavailable, Message: "provider returned a server error", Err: err}
		default:
			return &ProviderError{Kind: KindUnknown, Message: "provider request failed", Err: err}
		}
	}

	// Anything else (DNS failure, connection refused, TLS) counts as the
	// provider being unreachable.
	return &ProviderError{Kind: KindUnavailable, Message: "provider unreachable", Err: err}
}

package llm

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds the environment-sourced client configuration. Credentials
// are read once at startup and passed explicitly; nothing reads ambient
// process state after that.
type Settings struct {
	APIKey      string        `env:"GEMINI_API_KEY"`
	BaseURL     string        `env:"PROMPTLAB_ENDPOINT"`
	Model       string        `env:"PROMPTLAB_MODEL"`
	HTTPTimeout time.Duration `env:"PROMPTLAB_HTTP_TIMEOUT" envDefault:"90s"`
	MaxRetries  int           `env:"PROMPTLAB_MAX_RETRIES" envDefault:"0"`
	RetryDelay  time.Duration `env:"PROMPTLAB_RETRY_DELAY" envDefault:"2s"`
}

// LoadSettings reads client settings from the environment.
func LoadSettings() (*Settings, error) {
	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the settings are usable for live API calls.
func (s *Settings) Validate() error {
	if s.APIKey == "" {
		return ErrCredentialMissing
	}
	return nil
}

// Options converts the settings into client options.
func (s *Settings) Options() []Option {
	opts := []Option{
		WithAPIKey(s.APIKey),
		WithHTTPTimeout(s.HTTPTimeout),
	}
	if s.BaseURL != "" {
		opts = append(opts, WithBaseURL(s.BaseURL))
	}
	if s.Model != "" {
		opts = append(opts, WithModel(s.Model))
	}
	if s.MaxRetries > 0 {
		opts = append(opts, WithMaxRetries(s.MaxRetries, s.RetryDelay))
	}
	return opts
}

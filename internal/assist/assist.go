// Package assist produces text suggestions for form fields. Failures never
// touch the entity store; callers keep the previous value.
package assist

import (
	"context"

	"propdesk/internal/core"
)

// Suggester returns a suggested value for field given the form context.
type Suggester interface {
	Suggest(ctx context.Context, field string, form map[string]any) (string, error)
}

// Disabled is the Suggester used when no API key is configured.
type Disabled struct{}

func (Disabled) Suggest(context.Context, string, map[string]any) (string, error) {
	return "", ErrUnavailable
}

// Resolve asks s for a suggestion and falls back to previous on failure or
// an empty answer. The error is returned alongside so callers can report it.
func Resolve(ctx context.Context, s Suggester, field string, form map[string]any, previous string) (string, error) {
	if s == nil {
		return previous, ErrUnavailable
	}
	text, err := s.Suggest(ctx, field, form)
	if err != nil {
		return previous, err
	}
	if text == "" {
		return previous, nil
	}
	return text, nil
}

// Config selects the backend. An empty APIKey yields Disabled.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Retry   RetryConfig
	Logger  core.Logger
}

// New returns a GeminiClient, or Disabled when cfg has no key.
func New(cfg Config) Suggester {
	if cfg.APIKey == "" {
		return Disabled{}
	}
	return NewGeminiClient(cfg)
}

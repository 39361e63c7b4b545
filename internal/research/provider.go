package research

import (
	"context"
	"fmt"

	"github.com/cyderes/trending-topics-service/internal/config"
)

// Provider is a text completion backend: prompt in, text out, or error
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewProvider builds the provider selected by cfg. It returns nil without
// error when no API key is configured; research then always falls back.
func NewProvider(cfg config.ResearchConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

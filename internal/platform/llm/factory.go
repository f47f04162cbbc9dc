package llm

import (
	"context"
	"fmt"
)

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Provider {
	case "together", "":
		p, err = NewTogetherProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "openai":
		p, err = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "anthropic":
		p, err = NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "gemini":
		p, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

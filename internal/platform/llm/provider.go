package llm

import "context"

// Provider sends a single-turn prompt to a chat completion API and returns
// the raw text of the first reply.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	// System sets the assistant's role, e.g. "only reply in JSON".
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Text  string
	Model string
}

// Config selects and configures a provider.
type Config struct {
	Provider string // together, openai, anthropic, gemini, mock
	APIKey   string
	Model    string
	BaseURL  string
}

const defaultMaxTokens = 1024

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string, fallback string) string {
	if name == "" {
		return fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

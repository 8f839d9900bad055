package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// ErrModelUnavailable marks a transport or auth failure talking to the
// judgment model. Callers distinguish it from malformed output: transport
// failures surface as error verdicts while malformed output is recovered
// with the caller's pattern fallback.
var ErrModelUnavailable = errors.New("judgment model unavailable")

// Provider defines the judgment-model capability: a prompt in, raw text out.
// Structured-output extraction is deliberately NOT part of this interface;
// see ExtractJSON.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends a prompt and returns the raw response text. A transport
	// or auth failure returns an error wrapping ErrModelUnavailable.
	Generate(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// NewProvider creates a provider from configuration. An empty provider name
// disables the gateway; callers then run on pattern fallbacks only.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", cfg.Provider)
	}
}

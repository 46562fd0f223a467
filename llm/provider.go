// Package llm wraps the completion backends used for answer generation and
// the orchestrator's routing decision.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/h9-tec/al-muwatta-ai/config"
)

// Provider generates a completion for a fully rendered prompt.
type Provider interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	GetProviderType() string
}

// NewLLMProvider builds the configured completion backend. The openai provider
// also serves Gemini and any other OpenAI-compatible endpoint through its
// base_url setting.
func NewLLMProvider(cfg *config.LLMConfig, httpCfg *config.HTTPClientConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "gemini":
		return newOpenAIProvider(cfg)
	case "ollama":
		return newOllamaLLMProvider(cfg, httpCfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// Package embedding turns text into fixed-dimension vectors. One provider is
// shared by every collection so vectors from different schools stay comparable.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/h9-tec/al-muwatta-ai/config"
)

// Provider generates embeddings for text. Implementations must be
// deterministic for identical input and safe for concurrent use.
type Provider interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	GetProviderType() string
}

// NewProvider builds the configured embedding provider. A provider that cannot
// be constructed is a fatal startup error: nothing can be ingested or searched
// without embeddings.
func NewProvider(cfg config.EmbeddingConfig, httpCfg *config.HTTPClientConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIProvider(cfg)
	case "ollama":
		return newOllamaProvider(cfg, httpCfg)
	case "hash":
		return NewHashProvider(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/h9-tec/al-muwatta-ai/config"
)

// openAIProvider calls an OpenAI-compatible embeddings endpoint. With a
// multilingual model, Arabic and English paraphrases land near each other in
// the shared space, which is what cross-school comparability relies on.
type openAIProvider struct {
	client openai.Client
	model  string
	dims   int
}

func newOpenAIProvider(cfg config.EmbeddingConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedding provider requires api_key")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 384
	}
	return &openAIProvider{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		dims:   dims,
	}, nil
}

func (p *openAIProvider) GetProviderType() string { return "openai" }

func (p *openAIProvider) Dimensions() int { return p.dims }

func (p *openAIProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: openai.Int(int64(p.dims)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding response contained no data")
	}
	raw := resp.Data[0].Embedding
	if len(raw) != p.dims {
		return nil, fmt.Errorf("openai embedding dimension mismatch: want %d, got %d", p.dims, len(raw))
	}
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

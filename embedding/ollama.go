package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/h9-tec/al-muwatta-ai/common/httpx"
	"github.com/h9-tec/al-muwatta-ai/config"
)

// ollamaProvider embeds through a local Ollama server. Useful for fully
// offline deployments with a multilingual model pulled locally.
type ollamaProvider struct {
	client  *httpx.Client
	baseURL string
	model   string
	dims    int
}

func newOllamaProvider(cfg config.EmbeddingConfig, httpCfg *config.HTTPClientConfig) (Provider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 384
	}
	return &ollamaProvider{
		client:  httpx.NewFromConfig(httpCfg),
		baseURL: strings.TrimRight(base, "/"),
		model:   cfg.Model,
		dims:    dims,
	}, nil
}

func (p *ollamaProvider) GetProviderType() string { return "ollama" }

func (p *ollamaProvider) Dimensions() int { return p.dims }

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *ollamaProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embedding request returned status %d", resp.StatusCode)
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ollama embedding response: %w", err)
	}
	if len(out.Embedding) != p.dims {
		return nil, fmt.Errorf("ollama embedding dimension mismatch: want %d, got %d", p.dims, len(out.Embedding))
	}
	return out.Embedding, nil
}

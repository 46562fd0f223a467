package llm

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

type ollamaLLMProvider struct {
	client  *httpx.Client
	baseURL string
	model   string
	options map[string]interface{}
}

func newOllamaLLMProvider(cfg *config.LLMConfig, httpCfg *config.HTTPClientConfig) (Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama llm provider requires model")
	}
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	options := map[string]interface{}{"temperature": cfg.Temperature}
	if cfg.MaxTokens > 0 {
		options["num_predict"] = cfg.MaxTokens
	}
	return &ollamaLLMProvider{
		client:  httpx.NewFromConfig(httpCfg),
		baseURL: strings.TrimRight(base, "/"),
		model:   cfg.Model,
		options: options,
	}, nil
}

func (p *ollamaLLMProvider) GetProviderType() string { return "ollama" }

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func (p *ollamaLLMProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  false,
		Options: p.options,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama completion request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama completion request returned status %d", resp.StatusCode)
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama completion response: %w", err)
	}
	return out.Response, nil
}

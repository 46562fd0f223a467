package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/h9-tec/al-muwatta-ai/config"
)

type openAIProvider struct {
	client       openai.Client
	providerType string
	model        string
	temperature  float64
	maxTokens    int
}

func newOpenAIProvider(cfg *config.LLMConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s llm provider requires api_key", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s llm provider requires model", cfg.Provider)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIProvider{
		client:       openai.NewClient(opts...),
		providerType: cfg.Provider,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

func (p *openAIProvider) GetProviderType() string { return p.providerType }

func (p *openAIProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(p.temperature),
	}
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s completion request failed: %w", p.providerType, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s completion response contained no choices", p.providerType)
	}
	return resp.Choices[0].Message.Content, nil
}

// Package muwatta is the client facade over the multi-madhab retrieval
// engine, the routing orchestrator, and the cached scripture service. One
// Client owns all providers and answers questions end to end.
package muwatta

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/h9-tec/al-muwatta-ai/cache"
	"github.com/h9-tec/al-muwatta-ai/classify"
	"github.com/h9-tec/al-muwatta-ai/common/logger"
	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/contentcache"
	"github.com/h9-tec/al-muwatta-ai/embedding"
	"github.com/h9-tec/al-muwatta-ai/fiqh"
	"github.com/h9-tec/al-muwatta-ai/llm"
	"github.com/h9-tec/al-muwatta-ai/madhab"
	"github.com/h9-tec/al-muwatta-ai/orchestrator"
	"github.com/h9-tec/al-muwatta-ai/schema"
	"github.com/h9-tec/al-muwatta-ai/vectordb"
)

// Answer is one complete response with its provenance.
type Answer struct {
	Text        string                `json:"text"`
	MultiMadhab bool                  `json:"multi_madhab"`
	Reason      string                `json:"reason"`
	Category    classify.Category     `json:"category"`
	Sources     []schema.SearchResult `json:"sources,omitempty"`
}

// Client wires every subsystem from one configuration.
type Client struct {
	config            *config.Config
	embeddingProvider embedding.Provider
	vectordbProvider  vectordb.Provider
	llmProvider       llm.Provider
	engine            *fiqh.Engine
	content           *contentcache.Service
	orch              *orchestrator.Orchestrator
}

// NewClient builds a fully wired client. The LLM provider is optional; with
// none configured, Ask returns retrieved context verbatim and routing uses
// the keyword fallback.
func NewClient(cfg *config.Config) (*Client, error) {
	c := &Client{config: cfg}

	embeddingProvider, err := embedding.NewProvider(cfg.Embedding, cfg.HTTP)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider failed, err: %w", err)
	}
	c.embeddingProvider = embeddingProvider

	vectordbProvider, err := vectordb.NewProvider(&cfg.VectorDB)
	if err != nil {
		return nil, fmt.Errorf("create vector store provider failed, err: %w", err)
	}
	c.vectordbProvider = vectordbProvider

	if cfg.LLM.Provider != "" {
		llmProvider, err := llm.NewLLMProvider(&cfg.LLM, cfg.HTTP)
		if err != nil {
			return nil, fmt.Errorf("create llm provider failed, err: %w", err)
		}
		c.llmProvider = llmProvider
	}

	engine, err := fiqh.NewEngine(&cfg.Engine, embeddingProvider, vectordbProvider)
	if err != nil {
		return nil, fmt.Errorf("create fiqh engine failed, err: %w", err)
	}
	c.engine = engine

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	c.content = contentcache.NewService(cache.NewLRU(cfg.Cache.MaxEntries, ttl))

	decisionTTL := time.Duration(cfg.Cache.DecisionTTLSeconds) * time.Second
	c.orch = orchestrator.New(engine, c.content, c.llmProvider, cache.NewLRU(cfg.Cache.MaxEntries, decisionTTL), decisionTTL)

	logger.Infof("muwatta client ready (embedding=%s, store=%s)",
		embeddingProvider.GetProviderType(), vectordbProvider.GetProviderType())
	return c, nil
}

// Engine exposes the retrieval engine for ingestion tooling.
func (c *Client) Engine() *fiqh.Engine { return c.engine }

// Content exposes the cached scripture service.
func (c *Client) Content() *contentcache.Service { return c.content }

// AddDocument stores one text in the school's collection.
func (c *Client) AddDocument(ctx context.Context, school, text string, metadata map[string]interface{}) (string, error) {
	return c.engine.AddDocument(ctx, school, text, metadata)
}

// IngestText chunks and stores a long text in the school's collection.
func (c *Client) IngestText(ctx context.Context, school, text string, metadata map[string]interface{}) (int, error) {
	return c.engine.IngestText(ctx, school, text, metadata)
}

// Seed loads the curated bootstrap corpus.
func (c *Client) Seed(ctx context.Context) int {
	return c.engine.Seed(ctx)
}

// Search runs a cross-school search.
func (c *Client) Search(ctx context.Context, query string, params *fiqh.SearchParams) ([]schema.SearchResult, error) {
	return c.engine.Search(ctx, query, params)
}

// Statistics reports engine state.
func (c *Client) Statistics(ctx context.Context) fiqh.Statistics {
	return c.engine.Statistics(ctx)
}

// Ask answers a question end to end: classify, route, retrieve, and generate.
// language selects the response framing ("arabic" or "english").
func (c *Client) Ask(ctx context.Context, question, language string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is empty")
	}

	isFiqh, category := classify.IsFiqhQuestion(question)
	multi, reason := c.orch.ShouldUseMultiMadhab(ctx, question)

	answer := &Answer{MultiMadhab: multi, Reason: reason, Category: category}

	var prompt string
	switch {
	case isFiqh && multi:
		sections := c.orch.ComparativeSections(ctx, question, nil)
		order := make([]string, 0, len(madhab.Keys()))
		for _, key := range madhab.Keys() {
			order = append(order, key.String())
		}
		prompt = llm.BuildComparativePrompt(question, sections, order)
	case isFiqh:
		contextText, err := c.engine.RelevantContext(ctx, question, requestedSchools(question), 0)
		if err != nil {
			return nil, fmt.Errorf("build context failed, err: %w", err)
		}
		prompt = llm.BuildPrompt(question, []string{contextText}, "\n\n")
	default:
		scripture := c.orch.QuranHadithFromCache(question, 5)
		formatted := contentcache.FormatContext(scripture, language)
		prompt = llm.BuildPrompt(question, []string{formatted}, "\n\n")
	}

	prompt = classify.ResponseInstructions(isFiqh, category, language) + "\n\n" + prompt

	if classify.WantsSources(question) {
		sources, err := c.engine.Search(ctx, question, &fiqh.SearchParams{TopK: 5})
		if err == nil {
			answer.Sources = sources
		}
	}

	if c.llmProvider == nil {
		answer.Text = prompt
		return answer, nil
	}
	text, err := c.llmProvider.GenerateCompletion(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate completion failed, err: %w", err)
	}
	answer.Text = text
	return answer, nil
}

// requestedSchools extracts explicitly named schools from the question so a
// single-school question searches only that school.
func requestedSchools(question string) []string {
	lower := strings.ToLower(question)
	var schools []string
	for _, key := range madhab.Keys() {
		if strings.Contains(lower, key.String()) {
			schools = append(schools, key.String())
		}
	}
	return schools
}

// Close releases provider resources.
func (c *Client) Close() error {
	if c.vectordbProvider == nil {
		return nil
	}
	return c.vectordbProvider.Close()
}

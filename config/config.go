package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure for the assistant.
type Config struct {
	Engine    EngineConfig    `json:"engine" yaml:"engine"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Cache     CacheConfig     `json:"cache,omitempty" yaml:"cache,omitempty"`
	// HTTP holds global defaults for outbound calls (ollama providers, content APIs).
	HTTP *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
}

// EngineConfig contains retrieval defaults for the multi-madhab engine.
type EngineConfig struct {
	Splitter SplitterConfig `json:"splitter" yaml:"splitter"`
	// Threshold is the default minimum cosine similarity for Search.
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// ContextThreshold is the looser minimum used when building generative context.
	ContextThreshold float64 `json:"context_threshold,omitempty" yaml:"context_threshold,omitempty"`
	TopK             int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	// MaxContextLength bounds the citation-ready context block in characters.
	MaxContextLength int `json:"max_context_length,omitempty" yaml:"max_context_length,omitempty"`
}

// SplitterConfig defines document splitter configuration for book ingestion.
type SplitterConfig struct {
	Provider     string `json:"provider" yaml:"provider"` // Available options: character, token
	ChunkSize    int    `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
	ChunkOverlap int    `json:"chunk_overlap,omitempty" yaml:"chunk_overlap,omitempty"`
}

// LLMConfig defines configuration for the text generator.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai, gemini, ollama
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// EmbeddingConfig defines configuration for embedding models.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai, ollama, hash
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig defines configuration for vector databases.
type VectorDBConfig struct {
	Provider string `json:"provider" yaml:"provider"` // Available options: memory, qdrant, milvus
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	UseTLS   bool   `json:"use_tls,omitempty" yaml:"use_tls,omitempty"`
}

// CacheConfig controls the in-process content cache.
type CacheConfig struct {
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	// DecisionTTLSeconds bounds how long orchestration decisions are reused.
	DecisionTTLSeconds int `json:"decision_ttl_seconds,omitempty" yaml:"decision_ttl_seconds,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// Default returns a configuration that works with no external services:
// deterministic hash embeddings over an in-memory store.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Splitter: SplitterConfig{
				Provider:     "character",
				ChunkSize:    500,
				ChunkOverlap: 50,
			},
			Threshold:        0.5,
			ContextThreshold: 0.3,
			TopK:             3,
			MaxContextLength: 2000,
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "gemini-2.0-flash",
			Temperature: 0.3,
			MaxTokens:   2048,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hash",
			Dimensions: 384,
		},
		VectorDB: VectorDBConfig{
			Provider: "memory",
		},
		Cache: CacheConfig{
			MaxEntries:         2048,
			TTLSeconds:         3600,
			DecisionTTLSeconds: 600,
		},
	}
}

// Load reads a YAML configuration file, expanding ${ENV_VAR} references so API
// keys stay out of the file itself. Missing optional fields keep defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

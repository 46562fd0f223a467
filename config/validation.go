package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateVectorDB()...)
	errs = append(errs, c.validateEngine()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}

	switch strings.ToLower(c.Embedding.Provider) {
	case "openai", "ollama":
		if c.Embedding.Model == "" {
			errs = append(errs, ValidationError{
				Field:   "embedding.model",
				Message: fmt.Sprintf("embedding model is required for %s provider", c.Embedding.Provider),
			})
		}
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}

	// Validate dimensions are reasonable (typical range: 128-4096)
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	if c.VectorDB.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
	}

	switch strings.ToLower(c.VectorDB.Provider) {
	case "qdrant", "milvus":
		if c.VectorDB.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.host",
				Message: fmt.Sprintf("vectordb host is required for %s provider", c.VectorDB.Provider),
			})
		}
	}

	return errs
}

func (c *Config) validateEngine() ValidationErrors {
	var errs ValidationErrors

	if c.Engine.TopK <= 0 {
		errs = append(errs, ValidationError{
			Field:   "engine.top_k",
			Message: fmt.Sprintf("engine.top_k must be positive, got %d", c.Engine.TopK),
		})
	}

	if c.Engine.TopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "engine.top_k",
			Message: fmt.Sprintf("engine.top_k %d is too large (max recommended: 100)", c.Engine.TopK),
		})
	}

	if c.Engine.Threshold < 0 || c.Engine.Threshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "engine.threshold",
			Message: fmt.Sprintf("engine.threshold must be in [0, 1], got %.2f", c.Engine.Threshold),
		})
	}

	if c.Engine.ContextThreshold < 0 || c.Engine.ContextThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "engine.context_threshold",
			Message: fmt.Sprintf("engine.context_threshold must be in [0, 1], got %.2f", c.Engine.ContextThreshold),
		})
	}

	if c.Engine.MaxContextLength < 0 {
		errs = append(errs, ValidationError{
			Field:   "engine.max_context_length",
			Message: fmt.Sprintf("engine.max_context_length must be non-negative, got %d", c.Engine.MaxContextLength),
		})
	}

	switch c.Engine.Splitter.Provider {
	case "", "character", "token":
	default:
		errs = append(errs, ValidationError{
			Field:   "engine.splitter.provider",
			Message: fmt.Sprintf("unknown splitter provider %q (want character or token)", c.Engine.Splitter.Provider),
		})
	}

	if c.Engine.Splitter.ChunkOverlap < 0 || (c.Engine.Splitter.ChunkSize > 0 && c.Engine.Splitter.ChunkOverlap >= c.Engine.Splitter.ChunkSize) {
		errs = append(errs, ValidationError{
			Field:   "engine.splitter.chunk_overlap",
			Message: fmt.Sprintf("chunk_overlap %d must be non-negative and smaller than chunk_size %d",
				c.Engine.Splitter.ChunkOverlap, c.Engine.Splitter.ChunkSize),
		})
	}

	return errs
}

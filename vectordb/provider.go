// Package vectordb abstracts the per-collection vector store. One collection
// holds one school's documents; the engine fans out across them.
package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

// ErrDimensionMismatch is returned by EnsureCollection when a collection
// already exists with a different vector dimension. Writing mixed-dimension
// vectors would silently poison search, so this is surfaced loudly.
var ErrDimensionMismatch = errors.New("collection exists with different vector dimension")

// Provider is the storage contract the engine depends on.
//
// Search is best-effort in a fan-out context: a missing collection yields an
// empty result with a nil error rather than failing the whole query.
type Provider interface {
	// EnsureCollection creates the named collection if absent. Idempotent.
	EnsureCollection(ctx context.Context, name string, dim int) error
	// Upsert inserts or replaces points. Point IDs are globally unique within
	// the collection and never reused.
	Upsert(ctx context.Context, collection string, docs []schema.Document) error
	// Search returns up to opts.TopK points with score >= opts.Threshold,
	// ordered by descending similarity. opts.Filters restricts by payload
	// key/value equality.
	Search(ctx context.Context, collection string, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error)
	// CollectionInfo returns observable collection state; a zero value (not an
	// error) when the collection is absent.
	CollectionInfo(ctx context.Context, name string) (schema.CollectionInfo, error)
	GetProviderType() string
	Close() error
}

// NewProvider builds the configured vector store backend.
func NewProvider(cfg *config.VectorDBConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "memory":
		return NewMemoryProvider(), nil
	case "qdrant":
		return newQdrantProvider(cfg)
	case "milvus":
		return newMilvusProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown vectordb provider: %s", cfg.Provider)
	}
}

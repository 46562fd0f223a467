package vectordb

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/h9-tec/al-muwatta-ai/schema"
)

// MemoryProvider is a pure in-process store with exact cosine search. It is the
// deterministic fallback backend and the reference implementation the engine
// tests run against. Upserts are point-atomic under the collection lock, so a
// concurrent search observes either the pre- or post-write state.
type MemoryProvider struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	mu     sync.RWMutex
	dim    int
	order  []string // insertion order of point IDs, for stable iteration
	points map[string]schema.Document
}

// NewMemoryProvider creates an empty in-memory store.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{collections: make(map[string]*memCollection)}
}

func (p *MemoryProvider) EnsureCollection(ctx context.Context, name string, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("collection %s: dimension must be positive, got %d", name, dim)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.collections[name]; ok {
		if existing.dim != dim {
			return fmt.Errorf("collection %s: have %d, want %d: %w", name, existing.dim, dim, ErrDimensionMismatch)
		}
		return nil
	}
	p.collections[name] = &memCollection{
		dim:    dim,
		points: make(map[string]schema.Document),
	}
	return nil
}

func (p *MemoryProvider) collection(name string) *memCollection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.collections[name]
}

func (p *MemoryProvider) Upsert(ctx context.Context, collection string, docs []schema.Document) error {
	col := p.collection(collection)
	if col == nil {
		return fmt.Errorf("collection %s does not exist", collection)
	}
	col.mu.Lock()
	defer col.mu.Unlock()

	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("collection %s: point without ID", collection)
		}
		if len(doc.Vector) != col.dim {
			return fmt.Errorf("collection %s: vector dimension %d, want %d", collection, len(doc.Vector), col.dim)
		}
		if _, exists := col.points[doc.ID]; !exists {
			col.order = append(col.order, doc.ID)
		}
		col.points[doc.ID] = schema.CloneDocument(doc)
	}
	return nil
}

func (p *MemoryProvider) Search(ctx context.Context, collection string, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	col := p.collection(collection)
	if col == nil {
		// Best-effort fan-out contract: absent collection means no hits.
		return nil, nil
	}
	topK := 10
	threshold := 0.0
	var filters map[string]interface{}
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
		filters = opts.Filters
	}

	col.mu.RLock()
	defer col.mu.RUnlock()

	results := make([]schema.SearchResult, 0, topK)
	for _, id := range col.order {
		doc := col.points[id]
		if !matchFilters(doc.Metadata, filters) {
			continue
		}
		score := cosineSimilarity(vector, doc.Vector)
		if score < threshold {
			continue
		}
		results = append(results, schema.SearchResult{
			Document: schema.CloneDocument(doc),
			Score:    score,
		})
	}

	// Descending score; ties broken by ascending ID so repeated searches
	// always produce the same ordering.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (p *MemoryProvider) CollectionInfo(ctx context.Context, name string) (schema.CollectionInfo, error) {
	col := p.collection(name)
	if col == nil {
		return schema.CollectionInfo{Name: name}, nil
	}
	col.mu.RLock()
	defer col.mu.RUnlock()
	return schema.CollectionInfo{
		Name:       name,
		PointCount: int64(len(col.points)),
		Dimension:  col.dim,
	}, nil
}

func (p *MemoryProvider) GetProviderType() string { return "memory" }

func (p *MemoryProvider) Close() error { return nil }

func matchFilters(metadata, filters map[string]interface{}) bool {
	if len(filters) == 0 {
		return true
	}
	for k, want := range filters {
		got, ok := metadata[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

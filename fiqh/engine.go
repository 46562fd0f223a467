// Package fiqh implements multi-school retrieval over per-madhab vector
// collections. One shared multilingual embedding space keeps scores
// comparable across schools, so per-collection hits can be merged globally.
package fiqh

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/h9-tec/al-muwatta-ai/common/logger"
	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/embedding"
	"github.com/h9-tec/al-muwatta-ai/fusion"
	"github.com/h9-tec/al-muwatta-ai/madhab"
	"github.com/h9-tec/al-muwatta-ai/metrics"
	"github.com/h9-tec/al-muwatta-ai/schema"
	"github.com/h9-tec/al-muwatta-ai/textsplitter"
	"github.com/h9-tec/al-muwatta-ai/vectordb"
)

// Collection status values reported by Statistics.
const (
	StatusReady       = "ready"
	StatusEmpty       = "empty"
	StatusUnavailable = "unavailable"
)

const contextResultCount = 5

// SearchParams tunes one cross-school search. Zero values fall back to the
// engine configuration; a negative Threshold disables score filtering.
type SearchParams struct {
	// Schools restricts the search to the named schools. Empty, or entirely
	// unrecognized, means all four.
	Schools []string
	// TopK bounds the merged result count globally, not per school.
	TopK int
	// Threshold is the minimum similarity score. Zero means the configured
	// default; negative means no threshold.
	Threshold float64
	// Category filters on the category payload field when set.
	Category string
}

// Statistics describes observable engine state for monitoring.
type Statistics struct {
	EmbeddingProvider  string                          `json:"embedding_provider"`
	EmbeddingDimension int                             `json:"embedding_dimension"`
	VectorDatabase     string                          `json:"vector_database"`
	Collections        map[madhab.Key]CollectionStatus `json:"collections"`
}

// CollectionStatus is one school's collection state.
type CollectionStatus struct {
	Collection string `json:"collection_name"`
	Points     int64  `json:"points"`
	Status     string `json:"status"`
}

// Engine owns the four per-school collections and the shared embedder.
type Engine struct {
	cfg      *config.EngineConfig
	embedder embedding.Provider
	store    vectordb.Provider
	splitter textsplitter.TextSplitter

	mu      sync.Mutex
	pending map[madhab.Key]bool // collections whose creation failed, retried on next use
}

// NewEngine wires the embedder and store and ensures all four collections
// exist. A collection that cannot be created yet is logged and retried lazily
// on first use instead of failing construction; a degraded store should not
// take the whole service down.
func NewEngine(cfg *config.EngineConfig, embedder embedding.Provider, store vectordb.Provider) (*Engine, error) {
	splitter, err := textsplitter.NewTextSplitter(&cfg.Splitter)
	if err != nil {
		return nil, fmt.Errorf("build text splitter: %w", err)
	}
	e := &Engine{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		splitter: splitter,
		pending:  make(map[madhab.Key]bool),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, key := range madhab.Keys() {
		if err := store.EnsureCollection(ctx, madhab.CollectionFor(key), embedder.Dimensions()); err != nil {
			logger.Warnf("collection %s not ready, will retry on use: %v", madhab.CollectionFor(key), err)
			e.pending[key] = true
		}
	}
	logger.Infof("fiqh engine ready (dim=%d, store=%s)", embedder.Dimensions(), store.GetProviderType())
	return e, nil
}

// ensureReady retries collection creation for schools that failed at startup.
func (e *Engine) ensureReady(ctx context.Context, key madhab.Key) error {
	e.mu.Lock()
	pending := e.pending[key]
	e.mu.Unlock()
	if !pending {
		return nil
	}
	if err := e.store.EnsureCollection(ctx, madhab.CollectionFor(key), e.embedder.Dimensions()); err != nil {
		return err
	}
	e.mu.Lock()
	delete(e.pending, key)
	e.mu.Unlock()
	return nil
}

// AddDocument embeds one text and stores it in the school's collection. The
// school name may be any recognized English or Arabic alias; the canonical key
// is written back into the payload. Returns the stored point ID.
func (e *Engine) AddDocument(ctx context.Context, school, text string, metadata map[string]interface{}) (string, error) {
	key, ok := madhab.Normalize(school)
	if !ok {
		return "", fmt.Errorf("unrecognized madhab %q", school)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("document text is empty")
	}
	if err := e.ensureReady(ctx, key); err != nil {
		return "", fmt.Errorf("collection for %s unavailable: %w", key, err)
	}

	vector, err := e.embedder.GetEmbedding(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed document: %w", err)
	}

	meta := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[schema.MetaMadhab] = key.String()

	doc := schema.Document{
		ID:        uuid.NewString(),
		Content:   text,
		Vector:    vector,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}
	if err := e.store.Upsert(ctx, madhab.CollectionFor(key), []schema.Document{doc}); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	logger.Infof("added document to %s: %v", madhab.CollectionFor(key), meta[schema.MetaTopic])
	return doc.ID, nil
}

// DocumentInput is one text queued for batch ingestion.
type DocumentInput struct {
	School   string
	Text     string
	Metadata map[string]interface{}
}

// AddDocuments stores a batch of texts. A document that fails to normalize,
// embed or store is logged and skipped so one bad entry cannot abort a bulk
// load. Returns the number of documents stored.
func (e *Engine) AddDocuments(ctx context.Context, docs []DocumentInput) int {
	stored := 0
	for i, doc := range docs {
		if _, err := e.AddDocument(ctx, doc.School, doc.Text, doc.Metadata); err != nil {
			logger.Warnf("batch document %d skipped: %v", i, err)
			continue
		}
		stored++
	}
	return stored
}

// IngestText splits a long text into chunks and stores each chunk in the
// school's collection. Returns the number of chunks stored.
func (e *Engine) IngestText(ctx context.Context, school, text string, metadata map[string]interface{}) (int, error) {
	key, ok := madhab.Normalize(school)
	if !ok {
		return 0, fmt.Errorf("unrecognized madhab %q", school)
	}
	if err := e.ensureReady(ctx, key); err != nil {
		return 0, fmt.Errorf("collection for %s unavailable: %w", key, err)
	}

	meta := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[schema.MetaMadhab] = key.String()

	docs, err := textsplitter.CreateDocuments(e.splitter, []string{text}, []map[string]any{meta})
	if err != nil {
		return 0, fmt.Errorf("split text: %w", err)
	}
	for i := range docs {
		vector, err := e.embedder.GetEmbedding(ctx, docs[i].Content)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		docs[i].Vector = vector
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := e.store.Upsert(ctx, madhab.CollectionFor(key), docs); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	logger.Infof("ingested %d chunks into %s", len(docs), madhab.CollectionFor(key))
	return len(docs), nil
}

// Search embeds the query once and fans out across the selected school
// collections in parallel, then merges into one globally ordered list. An
// empty query returns no results. A school whose collection fails to answer
// is skipped, never fatal.
func (e *Engine) Search(ctx context.Context, query string, params *SearchParams) ([]schema.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if params == nil {
		params = &SearchParams{}
	}
	topK := params.TopK
	if topK <= 0 {
		topK = e.cfg.TopK
	}
	threshold := params.Threshold
	if threshold == 0 {
		threshold = e.cfg.Threshold
	} else if threshold < 0 {
		threshold = 0
	}

	selected := madhab.NormalizeAll(params.Schools)
	if len(selected) == 0 {
		selected = madhab.Keys()
	}

	record := metrics.NewSearchMetrics(uuid.NewString(), query)
	for _, key := range selected {
		record.SchoolsQueried = append(record.SchoolsQueried, key.String())
	}
	started := time.Now()

	vector, err := e.embedder.GetEmbedding(ctx, query)
	if err != nil {
		record.ErrorMsg = err.Error()
		record.TotalLatencyMs = time.Since(started).Milliseconds()
		record.Log()
		return nil, fmt.Errorf("embed query: %w", err)
	}
	record.EmbedLatencyMs = time.Since(started).Milliseconds()

	opts := &schema.SearchOptions{TopK: topK, Threshold: threshold}
	if params.Category != "" {
		opts.Filters = map[string]interface{}{schema.MetaCategory: params.Category}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		perKeys = make(map[string][]schema.SearchResult, len(selected))
	)
	for _, key := range selected {
		wg.Add(1)
		go func(key madhab.Key) {
			defer wg.Done()
			collection := madhab.CollectionFor(key)
			stats := metrics.CollectionStats{Collection: collection}
			collStart := time.Now()

			results, err := e.store.Search(ctx, collection, vector, opts)
			stats.LatencyMs = time.Since(collStart).Milliseconds()
			if err != nil {
				stats.ErrorMsg = err.Error()
				logger.Warnf("search failed for %s: %v", collection, err)
			}
			for i := range results {
				results[i].Madhab = key.String()
				if results[i].Document.Metadata == nil {
					results[i].Document.Metadata = make(map[string]interface{}, 1)
				}
				results[i].Document.Metadata[schema.MetaMadhab] = key.String()
			}
			stats.ResultCount = len(results)
			if len(results) > 0 {
				stats.TopScore = results[0].Score
			}

			mu.Lock()
			perKeys[key.String()] = results
			record.AddCollectionStats(stats)
			mu.Unlock()
		}(key)
	}
	wg.Wait()

	merged := fusion.MergeRanked(perKeys, topK)

	record.MergedCount = len(merged)
	record.TotalLatencyMs = time.Since(started).Milliseconds()
	record.Success = true
	record.Log()
	return merged, nil
}

// RelevantContext searches the selected schools and renders the hits as
// citation-ready blocks. Only whole blocks are included; the first block that
// would push the total past maxLength ends the context. maxLength <= 0 uses
// the configured default.
func (e *Engine) RelevantContext(ctx context.Context, query string, schools []string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = e.cfg.MaxContextLength
	}
	results, err := e.Search(ctx, query, &SearchParams{
		Schools:   schools,
		TopK:      contextResultCount,
		Threshold: e.cfg.ContextThreshold,
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	var parts []string
	total := 0
	for i, r := range results {
		block := formatContextBlock(i+1, r)
		if total+len(block) > maxLength {
			break
		}
		parts = append(parts, block)
		total += len(block)
	}
	return strings.Join(parts, "\n"), nil
}

func formatContextBlock(index int, r schema.SearchResult) string {
	topic := metaString(r.Document.Metadata, schema.MetaTopic, "Unknown")
	category := metaString(r.Document.Metadata, schema.MetaCategory, "General")
	references := metaString(r.Document.Metadata, schema.MetaReferences, "")
	return fmt.Sprintf(
		"---\n**[Source %d]** %s\n**Madhab**: %s | **Category**: %s | **Relevance**: %.2f\n**References**: %s\n\n%s\n---\n",
		index, topic, r.Madhab, category, r.Score, references, strings.TrimSpace(r.Document.Content),
	)
}

func metaString(meta map[string]interface{}, key, fallback string) string {
	if meta == nil {
		return fallback
	}
	if v, ok := meta[key]; ok {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return fallback
}

// Statistics reports per-school collection state. A collection that cannot be
// read is reported as unavailable rather than failing the whole call.
func (e *Engine) Statistics(ctx context.Context) Statistics {
	stats := Statistics{
		EmbeddingProvider:  e.embedder.GetProviderType(),
		EmbeddingDimension: e.embedder.Dimensions(),
		VectorDatabase:     e.store.GetProviderType(),
		Collections:        make(map[madhab.Key]CollectionStatus, len(madhab.Keys())),
	}
	for _, key := range madhab.Keys() {
		collection := madhab.CollectionFor(key)
		info, err := e.store.CollectionInfo(ctx, collection)
		if err != nil {
			logger.Warnf("failed to read stats for %s: %v", collection, err)
			stats.Collections[key] = CollectionStatus{Collection: collection, Status: StatusUnavailable}
			continue
		}
		status := StatusEmpty
		if info.PointCount > 0 {
			status = StatusReady
		}
		stats.Collections[key] = CollectionStatus{
			Collection: collection,
			Points:     info.PointCount,
			Status:     status,
		}
	}
	return stats
}

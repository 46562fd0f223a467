package schema

import "time"

// Well-known payload keys shared between ingestion and search.
const (
	MetaMadhab     = "madhab"
	MetaTopic      = "topic"
	MetaCategory   = "category"
	MetaSource     = "source"
	MetaReferences = "references"
	MetaBookTitle  = "book_title"
	MetaAuthor     = "author"
	MetaPage       = "page"
	MetaChunkIndex = "chunk_index"
)

// Document represents a jurisprudence passage with its vector embedding and metadata.
type Document struct {
	ID        string                 `json:"id"`
	Content   string                 `json:"content"`
	Vector    []float32              `json:"-"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

// SearchResult is an ephemeral per-query hit. Madhab carries the canonical key of
// the collection the hit came from.
type SearchResult struct {
	Document Document `json:"document"`
	Madhab   string   `json:"madhab"`
	Score    float64  `json:"score"`
}

// SearchOptions contains options for vector search within one collection.
type SearchOptions struct {
	TopK      int                    `json:"top_k"`
	Threshold float64                `json:"threshold"`
	Filters   map[string]interface{} `json:"filters,omitempty"`
}

// CollectionInfo describes the observable state of one collection.
type CollectionInfo struct {
	Name       string `json:"name"`
	PointCount int64  `json:"point_count"`
	Dimension  int    `json:"dimension,omitempty"`
}

// CloneDocument returns a deep copy so cached or merged results cannot alias
// the caller's metadata map or vector.
func CloneDocument(doc Document) Document {
	cloned := doc
	if doc.Metadata != nil {
		cloned.Metadata = make(map[string]interface{}, len(doc.Metadata))
		for k, v := range doc.Metadata {
			cloned.Metadata[k] = v
		}
	}
	if doc.Vector != nil {
		cloned.Vector = make([]float32, len(doc.Vector))
		copy(cloned.Vector, doc.Vector)
	}
	return cloned
}

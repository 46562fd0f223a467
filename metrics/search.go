// Package metrics records per-query search telemetry as structured JSON log
// lines.
package metrics

import (
	"encoding/json"
	"time"

	"github.com/h9-tec/al-muwatta-ai/common/logger"
)

// SearchMetrics captures one cross-school search from embedding to merge.
type SearchMetrics struct {
	QueryID   string    `json:"query_id"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`

	SchoolsQueried []string `json:"schools_queried"`
	EmbedLatencyMs int64    `json:"embed_latency_ms"`

	CollectionMetrics map[string]CollectionStats `json:"collection_metrics"`
	TotalRetrieved    int                        `json:"total_retrieved"`
	MergedCount       int                        `json:"merged_count"`

	TotalLatencyMs int64  `json:"total_latency_ms"`
	Success        bool   `json:"success"`
	ErrorMsg       string `json:"error_msg,omitempty"`
}

// CollectionStats is one collection's share of a fan-out search.
type CollectionStats struct {
	Collection  string  `json:"collection"`
	LatencyMs   int64   `json:"latency_ms"`
	ResultCount int     `json:"result_count"`
	TopScore    float64 `json:"top_score"`
	ErrorMsg    string  `json:"error_msg,omitempty"`
}

// NewSearchMetrics creates a metrics record for one query.
func NewSearchMetrics(queryID, query string) *SearchMetrics {
	return &SearchMetrics{
		QueryID:           queryID,
		Query:             query,
		Timestamp:         time.Now(),
		CollectionMetrics: make(map[string]CollectionStats),
	}
}

// AddCollectionStats records one collection's outcome.
func (m *SearchMetrics) AddCollectionStats(stats CollectionStats) {
	if m.CollectionMetrics == nil {
		m.CollectionMetrics = make(map[string]CollectionStats)
	}
	m.CollectionMetrics[stats.Collection] = stats
	m.TotalRetrieved += stats.ResultCount
}

// Log emits the record as one JSON log line.
func (m *SearchMetrics) Log() {
	if data, err := json.Marshal(m); err == nil {
		logger.Infof("[SEARCH_METRICS] %s", string(data))
	}
}

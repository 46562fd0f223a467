package metrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMetricsAccumulates(t *testing.T) {
	m := NewSearchMetrics("q-1", "what breaks wudu")
	m.AddCollectionStats(CollectionStats{Collection: "maliki_fiqh", ResultCount: 3, TopScore: 0.91})
	m.AddCollectionStats(CollectionStats{Collection: "hanafi_fiqh", ResultCount: 2, TopScore: 0.84})

	assert.Equal(t, 5, m.TotalRetrieved)
	assert.Len(t, m.CollectionMetrics, 2)
	assert.Equal(t, 0.91, m.CollectionMetrics["maliki_fiqh"].TopScore)
}

func TestSearchMetricsMarshals(t *testing.T) {
	m := NewSearchMetrics("q-2", "zakat on gold")
	m.SchoolsQueried = []string{"maliki", "hanbali"}
	m.AddCollectionStats(CollectionStats{Collection: "maliki_fiqh", ResultCount: 1, ErrorMsg: "timeout"})
	m.MergedCount = 1
	m.Success = true

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "q-2", decoded["query_id"])
	assert.Equal(t, true, decoded["success"])
	collections, ok := decoded["collection_metrics"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, collections, "maliki_fiqh")
}

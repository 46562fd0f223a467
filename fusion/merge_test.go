package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h9-tec/al-muwatta-ai/schema"
)

func result(madhab, id string, score float64) schema.SearchResult {
	return schema.SearchResult{
		Document: schema.Document{ID: id, Content: "content " + id},
		Madhab:   madhab,
		Score:    score,
	}
}

func TestMergeRankedGlobalOrder(t *testing.T) {
	lists := map[string][]schema.SearchResult{
		"maliki": {result("maliki", "m1", 0.9), result("maliki", "m2", 0.4)},
		"hanafi": {result("hanafi", "h1", 0.7), result("hanafi", "h2", 0.6)},
		"shafii": {result("shafii", "s1", 0.8)},
	}

	merged := MergeRanked(lists, 0)
	require.Len(t, merged, 5)
	ids := make([]string, 0, len(merged))
	for _, r := range merged {
		ids = append(ids, r.Document.ID)
	}
	assert.Equal(t, []string{"m1", "s1", "h1", "h2", "m2"}, ids)
}

func TestMergeRankedTieBreaks(t *testing.T) {
	lists := map[string][]schema.SearchResult{
		"shafii": {result("shafii", "a", 0.5)},
		"hanafi": {result("hanafi", "z", 0.5), result("hanafi", "a", 0.5)},
	}

	merged := MergeRanked(lists, 0)
	require.Len(t, merged, 3)
	// Same score: school key ascending, then ID ascending.
	assert.Equal(t, "hanafi", merged[0].Madhab)
	assert.Equal(t, "a", merged[0].Document.ID)
	assert.Equal(t, "hanafi", merged[1].Madhab)
	assert.Equal(t, "z", merged[1].Document.ID)
	assert.Equal(t, "shafii", merged[2].Madhab)
}

func TestMergeRankedLimit(t *testing.T) {
	lists := map[string][]schema.SearchResult{
		"maliki": {result("maliki", "m1", 0.9), result("maliki", "m2", 0.8)},
		"hanafi": {result("hanafi", "h1", 0.7)},
	}

	merged := MergeRanked(lists, 2)
	require.Len(t, merged, 2)
	assert.Equal(t, "m1", merged[0].Document.ID)
	assert.Equal(t, "m2", merged[1].Document.ID)
}

func TestMergeRankedDeterministic(t *testing.T) {
	lists := map[string][]schema.SearchResult{
		"maliki":  {result("maliki", "m1", 0.5)},
		"hanafi":  {result("hanafi", "h1", 0.5)},
		"shafii":  {result("shafii", "s1", 0.5)},
		"hanbali": {result("hanbali", "b1", 0.5)},
	}

	first := MergeRanked(lists, 0)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, MergeRanked(lists, 0))
	}
}

func TestMergeRankedEmpty(t *testing.T) {
	assert.Empty(t, MergeRanked(nil, 5))
	assert.Empty(t, MergeRanked(map[string][]schema.SearchResult{"maliki": nil}, 5))
}

func TestMergeByIDKeepsBestScore(t *testing.T) {
	lists := map[string][]schema.SearchResult{
		"maliki": {result("maliki", "shared", 0.6), result("maliki", "m2", 0.3)},
		"hanafi": {result("hanafi", "shared", 0.9)},
	}

	merged := MergeByID(lists, 0)
	require.Len(t, merged, 2)
	assert.Equal(t, "shared", merged[0].Document.ID)
	assert.Equal(t, "hanafi", merged[0].Madhab)
	assert.InDelta(t, 0.9, merged[0].Score, 1e-9)
	assert.Equal(t, "m2", merged[1].Document.ID)
}

package fiqh

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/embedding"
	"github.com/h9-tec/al-muwatta-ai/madhab"
	"github.com/h9-tec/al-muwatta-ai/schema"
	"github.com/h9-tec/al-muwatta-ai/vectordb"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	e, err := NewEngine(&cfg.Engine, embedding.NewHashProvider(64), vectordb.NewMemoryProvider())
	require.NoError(t, err)
	return e
}

func TestNewEngineEnsuresCollections(t *testing.T) {
	e := newTestEngine(t)
	stats := e.Statistics(context.Background())
	require.Len(t, stats.Collections, 4)
	for _, key := range madhab.Keys() {
		status, ok := stats.Collections[key]
		require.True(t, ok)
		assert.Equal(t, key.String()+"_fiqh", status.Collection)
		assert.Equal(t, StatusEmpty, status.Status)
	}
}

func TestAddDocumentNormalizesSchool(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	id, err := e.AddDocument(ctx, "Shafi'i", "Qunut is performed in Fajr prayer.", map[string]interface{}{
		schema.MetaTopic: "Qunut",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stats := e.Statistics(ctx)
	assert.Equal(t, int64(1), stats.Collections[madhab.Shafii].Points)
	assert.Equal(t, StatusReady, stats.Collections[madhab.Shafii].Status)

	_, err = e.AddDocument(ctx, "jafari", "text", nil)
	assert.Error(t, err)

	_, err = e.AddDocument(ctx, "maliki", "   ", nil)
	assert.Error(t, err)
}

func TestAddDocumentArabicAlias(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.AddDocument(ctx, "المالكية", "السدل في الصلاة عند المالكية", nil)
	require.NoError(t, err)
	stats := e.Statistics(ctx)
	assert.Equal(t, int64(1), stats.Collections[madhab.Maliki].Points)
}

func TestSearchEmptyQuery(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "   ", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMergesAcrossSchools(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.AddDocument(ctx, "maliki", "In Maliki prayer the arms rest at the sides, the sadl position.", map[string]interface{}{
		schema.MetaTopic: "Hand placement",
	})
	require.NoError(t, err)
	_, err = e.AddDocument(ctx, "hanafi", "In Hanafi prayer the hands are folded below the navel, the qabd position.", map[string]interface{}{
		schema.MetaTopic: "Hand placement",
	})
	require.NoError(t, err)
	_, err = e.AddDocument(ctx, "hanbali", "Zakat nisab rules for livestock in the Hanbali school.", nil)
	require.NoError(t, err)

	results, err := e.Search(ctx, "where are the hands placed in prayer", &SearchParams{TopK: 10, Threshold: -1})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Every hit is tagged with its school and scores are non-increasing.
	seen := map[string]bool{}
	for i, r := range results {
		assert.NotEmpty(t, r.Madhab)
		assert.Equal(t, r.Madhab, r.Document.Metadata[schema.MetaMadhab])
		seen[r.Madhab] = true
		if i > 0 {
			assert.LessOrEqual(t, r.Score, results[i-1].Score)
		}
	}
	assert.True(t, seen["maliki"])
	assert.True(t, seen["hanafi"])
}

func TestSearchSchoolSelection(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.AddDocument(ctx, "maliki", "Maliki fasting rules for Ramadan.", nil)
	require.NoError(t, err)
	_, err = e.AddDocument(ctx, "hanafi", "Hanafi fasting rules for Ramadan.", nil)
	require.NoError(t, err)

	results, err := e.Search(ctx, "fasting rules Ramadan", &SearchParams{
		Schools:   []string{"Maliki"},
		TopK:      10,
		Threshold: -1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "maliki", r.Madhab)
	}

	// Entirely unrecognized selections fall back to all schools.
	results, err = e.Search(ctx, "fasting rules Ramadan", &SearchParams{
		Schools:   []string{"jafari", "zahiri"},
		TopK:      10,
		Threshold: -1,
	})
	require.NoError(t, err)
	schools := map[string]bool{}
	for _, r := range results {
		schools[r.Madhab] = true
	}
	assert.True(t, schools["maliki"])
	assert.True(t, schools["hanafi"])
}

func TestSearchDeterministic(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	require.Positive(t, e.Seed(ctx))

	first, err := e.Search(ctx, "wudu obligations", &SearchParams{TopK: 5, Threshold: -1})
	require.NoError(t, err)
	require.NotEmpty(t, first)
	for i := 0; i < 10; i++ {
		again, err := e.Search(ctx, "wudu obligations", &SearchParams{TopK: 5, Threshold: -1})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchTopKIsGlobal(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	require.Positive(t, e.Seed(ctx))

	results, err := e.Search(ctx, "prayer rulings", &SearchParams{TopK: 3, Threshold: -1})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 3)
}

func TestIngestTextChunks(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	long := strings.Repeat("The conditions of zakat on wealth include full ownership and reaching the nisab. ", 30)
	count, err := e.IngestText(ctx, "hanbali", long, map[string]interface{}{
		schema.MetaSource: "Al-Mughni",
	})
	require.NoError(t, err)
	assert.Greater(t, count, 1)

	stats := e.Statistics(ctx)
	assert.Equal(t, int64(count), stats.Collections[madhab.Hanbali].Points)
}

func TestRelevantContext(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.AddDocument(ctx, "maliki", "wudu obligations include washing the face", map[string]interface{}{
		schema.MetaTopic:      "Wudu",
		schema.MetaCategory:   "taharah",
		schema.MetaReferences: "Al-Risala",
	})
	require.NoError(t, err)
	_, err = e.AddDocument(ctx, "hanafi", "wudu obligations include wiping a quarter of the head", map[string]interface{}{
		schema.MetaTopic: "Wudu",
	})
	require.NoError(t, err)

	out, err := e.RelevantContext(ctx, "wudu obligations include washing", nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Contains(t, out, "**[Source 1]**")
	assert.Contains(t, out, "**Madhab**: maliki")
	assert.Contains(t, out, "**References**: Al-Risala")
	assert.LessOrEqual(t, len(out), e.cfg.MaxContextLength)

	// Tight budgets still only emit whole blocks.
	small, err := e.RelevantContext(ctx, "wudu obligations include washing", nil, 40)
	require.NoError(t, err)
	assert.Empty(t, small)

	none, err := e.RelevantContext(ctx, "", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatisticsMetadata(t *testing.T) {
	e := newTestEngine(t)
	stats := e.Statistics(context.Background())
	assert.Equal(t, "hash", stats.EmbeddingProvider)
	assert.Equal(t, 64, stats.EmbeddingDimension)
	assert.Equal(t, "memory", stats.VectorDatabase)
}

func TestAddDocumentsSkipsBadEntries(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	stored := e.AddDocuments(ctx, []DocumentInput{
		{School: "maliki", Text: "Raising hands only at the opening takbir."},
		{School: "jafari", Text: "Unrecognized school, must be skipped."},
		{School: "hanafi", Text: ""},
		{School: "hanbali", Text: "Wiping over socks is permitted for a traveler."},
	})

	assert.Equal(t, 2, stored)
	stats := e.Statistics(ctx)
	assert.Equal(t, int64(1), stats.Collections[madhab.Maliki].Points)
	assert.Equal(t, int64(0), stats.Collections[madhab.Hanafi].Points)
	assert.Equal(t, int64(1), stats.Collections[madhab.Hanbali].Points)
}

package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h9-tec/al-muwatta-ai/cache"
	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/contentcache"
	"github.com/h9-tec/al-muwatta-ai/embedding"
	"github.com/h9-tec/al-muwatta-ai/fiqh"
	"github.com/h9-tec/al-muwatta-ai/vectordb"
)

// mockLLMProvider scripts routing responses for tests.
type mockLLMProvider struct {
	response string
	err      error
	calls    int
}

func (m *mockLLMProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMProvider) GetProviderType() string { return "mock" }

func newTestOrchestrator(t *testing.T, provider *mockLLMProvider) *Orchestrator {
	t.Helper()
	cfg := config.Default()
	engine, err := fiqh.NewEngine(&cfg.Engine, embedding.NewHashProvider(64), vectordb.NewMemoryProvider())
	require.NoError(t, err)
	content := contentcache.NewService(cache.NewLRU(256, time.Minute))

	if provider == nil {
		return New(engine, content, nil, cache.NewLRU(64, time.Minute), time.Minute)
	}
	return New(engine, content, provider, cache.NewLRU(64, time.Minute), time.Minute)
}

func TestShouldUseMultiMadhabNonFiqh(t *testing.T) {
	provider := &mockLLMProvider{response: `{"needs_multi_madhab": true, "reason": "x"}`}
	o := newTestOrchestrator(t, provider)

	multi, reason := o.ShouldUseMultiMadhab(context.Background(), "Show me Surah Al-Fatiha")
	assert.False(t, multi)
	assert.Contains(t, reason, "quran")
	// Non-fiqh questions never reach the model.
	assert.Zero(t, provider.calls)
}

func TestShouldUseMultiMadhabLLMDecision(t *testing.T) {
	provider := &mockLLMProvider{response: `{"needs_multi_madhab": false, "reason": "Specific school requested"}`}
	o := newTestOrchestrator(t, provider)

	multi, reason := o.ShouldUseMultiMadhab(context.Background(), "What is the ruling on wudu?")
	assert.False(t, multi)
	assert.Equal(t, "Specific school requested", reason)
	assert.Equal(t, 1, provider.calls)
}

func TestShouldUseMultiMadhabEmbeddedJSON(t *testing.T) {
	provider := &mockLLMProvider{response: "Here is my analysis:\n```json\n{\"needs_multi_madhab\": true, \"reason\": \"Rulings differ\"}\n```\nHope that helps."}
	o := newTestOrchestrator(t, provider)

	multi, reason := o.ShouldUseMultiMadhab(context.Background(), "What is the ruling on fasting while traveling?")
	assert.True(t, multi)
	assert.Equal(t, "Rulings differ", reason)
}

func TestShouldUseMultiMadhabFallbackOnError(t *testing.T) {
	provider := &mockLLMProvider{err: fmt.Errorf("model unreachable")}
	o := newTestOrchestrator(t, provider)
	ctx := context.Background()

	// Explicit comparison request routes multi even without the model.
	multi, _ := o.ShouldUseMultiMadhab(ctx, "Compare the ruling on wudu across schools")
	assert.True(t, multi)

	// A named school routes single-path.
	multi, _ = o.ShouldUseMultiMadhab(ctx, "What is the Maliki ruling on wudu?")
	assert.False(t, multi)

	// General fiqh defaults to multi.
	multi, _ = o.ShouldUseMultiMadhab(ctx, "What is the ruling on eating shellfish?")
	assert.True(t, multi)
}

func TestShouldUseMultiMadhabDecisionCached(t *testing.T) {
	provider := &mockLLMProvider{response: `{"needs_multi_madhab": true, "reason": "varies"}`}
	o := newTestOrchestrator(t, provider)
	ctx := context.Background()

	first, _ := o.ShouldUseMultiMadhab(ctx, "What is the ruling on wudu?")
	second, _ := o.ShouldUseMultiMadhab(ctx, "What is the ruling on wudu?")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls)
}

func TestParseDecision(t *testing.T) {
	d, err := parseDecision(`{"needs_multi_madhab": true, "needs_web_search": false, "reason": "differs"}`)
	require.NoError(t, err)
	assert.True(t, d.MultiMadhab)
	assert.Equal(t, "differs", d.Reason)

	d, err = parseDecision(`{"needs_multi_madhab": false}`)
	require.NoError(t, err)
	assert.False(t, d.MultiMadhab)
	assert.NotEmpty(t, d.Reason)

	// Balanced-brace extraction from surrounding prose.
	d, err = parseDecision("Sure! {\"needs_multi_madhab\": true, \"reason\": \"r\"} done")
	require.NoError(t, err)
	assert.True(t, d.MultiMadhab)

	// Last resort: literal true anywhere in the text.
	d, err = parseDecision("the answer is true")
	require.NoError(t, err)
	assert.True(t, d.MultiMadhab)

	d, err = parseDecision("single school is enough")
	require.NoError(t, err)
	assert.False(t, d.MultiMadhab)
}

func TestFallbackKeywordCheck(t *testing.T) {
	multi, _ := fallbackKeywordCheck("ما الفرق بين المذاهب في الوضوء؟")
	assert.True(t, multi)

	multi, _ = fallbackKeywordCheck("ما حكم الصيام عند الحنبلي؟")
	assert.False(t, multi)

	multi, _ = fallbackKeywordCheck("What is the ruling on zakat?")
	assert.True(t, multi)

	// Comparison beats a named school.
	multi, _ = fallbackKeywordCheck("Compare the Maliki and Hanafi rulings on wudu")
	assert.True(t, multi)
}

func TestSearchMadhabsSeparately(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	ctx := context.Background()

	_, err := o.engine.AddDocument(ctx, "maliki", "wudu obligations include washing the face", nil)
	require.NoError(t, err)
	_, err = o.engine.AddDocument(ctx, "hanafi", "wudu obligations include wiping a quarter of the head", nil)
	require.NoError(t, err)

	bySchool := o.SearchMadhabsSeparately(ctx, "wudu obligations include", []string{"maliki", "hanafi"}, 5)
	require.Len(t, bySchool, 2)
	assert.NotEmpty(t, bySchool["maliki"])
	assert.NotEmpty(t, bySchool["hanafi"])
	for school, list := range bySchool {
		for _, r := range list {
			assert.Equal(t, school, r.Madhab)
		}
	}

	// Unrecognized selection falls back to all four schools.
	bySchool = o.SearchMadhabsSeparately(ctx, "wudu obligations include", []string{"zahiri"}, 5)
	assert.Len(t, bySchool, 4)
}

func TestComparativeSections(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	ctx := context.Background()

	_, err := o.engine.AddDocument(ctx, "maliki", "wudu obligations include washing the face", nil)
	require.NoError(t, err)

	sections := o.ComparativeSections(ctx, "wudu obligations include washing", []string{"maliki", "hanafi"})
	require.Contains(t, sections, "maliki")
	assert.Contains(t, sections["maliki"], "washing the face")
	// Schools with no hits are omitted.
	assert.NotContains(t, sections, "hanafi")
}

func TestHealingContentDeduplicates(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	o.content.PutSurah(contentcache.Surah{
		Number:      94,
		EnglishName: "Ash-Sharh",
		Ayahs:       []contentcache.Ayah{{NumberInSurah: 5, Text: "with hardship comes relief and peace"}},
	}, contentcache.DefaultEdition, 0)
	o.content.PutHadith(contentcache.Hadith{
		Collection: "muslim", Number: 1, Arabic: "x", Translation: "patience brings relief",
	}, 0)

	out := o.HealingContent("", []string{"relief", "peace"})
	// The verse matches both keywords but appears once.
	assert.Len(t, out.QuranResults, 1)
	assert.Len(t, out.HadithResults, 1)
}

func TestQuranHadithFromCache(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	o.content.PutSurah(contentcache.Surah{
		Number:      1,
		EnglishName: "Al-Fatiha",
		Ayahs:       []contentcache.Ayah{{NumberInSurah: 2, Text: "all praise belongs to Allah"}},
	}, contentcache.DefaultEdition, 0)

	ctx := o.QuranHadithFromCache("praise", 5)
	assert.Len(t, ctx.QuranResults, 1)
	assert.Empty(t, ctx.HadithResults)
}

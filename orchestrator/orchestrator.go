// Package orchestrator decides how a question should be answered: which
// schools to consult, whether a comparative multi-school answer is warranted,
// and what cached scripture to attach. The routing decision is LLM-assisted
// with a deterministic keyword fallback, so the service still routes sensibly
// when the model is unreachable.
package orchestrator

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/h9-tec/al-muwatta-ai/cache"
	"github.com/h9-tec/al-muwatta-ai/classify"
	"github.com/h9-tec/al-muwatta-ai/common/logger"
	"github.com/h9-tec/al-muwatta-ai/contentcache"
	"github.com/h9-tec/al-muwatta-ai/fiqh"
	"github.com/h9-tec/al-muwatta-ai/llm"
	"github.com/h9-tec/al-muwatta-ai/madhab"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

const (
	perSchoolResultCount = 5
	perSchoolThreshold   = 0.3
	healingResultLimit   = 10
)

// defaultHealingKeywords seed comfort-content lookups when the caller gives
// no emotional state.
var defaultHealingKeywords = []string{
	"patience", "comfort", "relief", "peace",
	"mercy", "forgiveness", "hope", "strength",
}

// Decision is the outcome of the multi-madhab routing analysis.
type Decision struct {
	MultiMadhab bool   `json:"needs_multi_madhab"`
	WebSearch   bool   `json:"needs_web_search"`
	Reason      string `json:"reason"`
}

// Orchestrator coordinates the engine, the scripture cache, and the routing
// model.
type Orchestrator struct {
	engine      *fiqh.Engine
	content     *contentcache.Service
	llmProvider llm.Provider
	decisions   cache.Cache
	decisionTTL time.Duration
}

// New wires an orchestrator. llmProvider may be nil; routing then always uses
// the keyword fallback. decisions may be nil to disable decision caching.
func New(engine *fiqh.Engine, content *contentcache.Service, llmProvider llm.Provider, decisions cache.Cache, decisionTTL time.Duration) *Orchestrator {
	return &Orchestrator{
		engine:      engine,
		content:     content,
		llmProvider: llmProvider,
		decisions:   decisions,
		decisionTTL: decisionTTL,
	}
}

// SearchMadhabsSeparately runs one search per selected school and keeps the
// per-school result lists apart, for comparative presentation. Unrecognized
// school names are dropped; an empty or entirely unrecognized selection means
// all four. A school whose search fails contributes an empty list.
func (o *Orchestrator) SearchMadhabsSeparately(ctx context.Context, query string, schools []string, perSchool int) map[string][]schema.SearchResult {
	if perSchool <= 0 {
		perSchool = perSchoolResultCount
	}
	selected := madhab.NormalizeAll(schools)
	if len(selected) == 0 {
		selected = madhab.Keys()
	}

	results := make(map[string][]schema.SearchResult, len(selected))
	for _, key := range selected {
		list, err := o.engine.Search(ctx, query, &fiqh.SearchParams{
			Schools:   []string{key.String()},
			TopK:      perSchool,
			Threshold: perSchoolThreshold,
		})
		if err != nil {
			logger.Errorf("failed to search %s madhab: %v", key, err)
			results[key.String()] = nil
			continue
		}
		results[key.String()] = list
		logger.Infof("searched %s madhab: found %d results", key, len(list))
	}
	return results
}

// ComparativeSections renders per-school context sections from separate
// searches, keyed by canonical school name. Schools with no hits are omitted.
func (o *Orchestrator) ComparativeSections(ctx context.Context, query string, schools []string) map[string]string {
	bySchool := o.SearchMadhabsSeparately(ctx, query, schools, perSchoolResultCount)
	sections := make(map[string]string, len(bySchool))
	for school, list := range bySchool {
		if len(list) == 0 {
			continue
		}
		var sb strings.Builder
		for i, r := range list {
			fmt.Fprintf(&sb, "[%d] (%.2f) %s\n", i+1, r.Score, strings.TrimSpace(r.Document.Content))
		}
		sections[school] = sb.String()
	}
	return sections
}

// QuranHadithFromCache returns cached scripture matches for the query,
// unmodified.
func (o *Orchestrator) QuranHadithFromCache(query string, limit int) contentcache.Context {
	if limit <= 0 {
		limit = 5
	}
	return contentcache.Context{
		QuranResults:  o.content.SearchQuran(query, contentcache.DefaultEdition, limit),
		HadithResults: o.content.SearchHadith(query, nil, limit),
	}
}

// HealingContent gathers comfort-oriented verses and narrations for a user
// state, deduplicated by text.
func (o *Orchestrator) HealingContent(userState string, keywords []string) contentcache.Context {
	terms := append([]string{}, keywords...)
	if userState != "" {
		terms = append(terms, userState)
	}
	if len(terms) == 0 {
		terms = defaultHealingKeywords
	}

	var out contentcache.Context
	seenVerse := make(map[string]bool)
	seenHadith := make(map[string]bool)
	for _, term := range terms {
		for _, v := range o.content.SearchQuran(term, contentcache.DefaultEdition, 3) {
			if v.Text == "" || seenVerse[v.Text] {
				continue
			}
			seenVerse[v.Text] = true
			out.QuranResults = append(out.QuranResults, v)
		}
		for _, h := range o.content.SearchHadith(term, nil, 3) {
			key := h.Arabic + h.Translation
			if key == "" || seenHadith[key] {
				continue
			}
			seenHadith[key] = true
			out.HadithResults = append(out.HadithResults, h)
		}
	}
	if len(out.QuranResults) > healingResultLimit {
		out.QuranResults = out.QuranResults[:healingResultLimit]
	}
	if len(out.HadithResults) > healingResultLimit {
		out.HadithResults = out.HadithResults[:healingResultLimit]
	}
	return out
}

// ShouldUseMultiMadhab decides whether the question warrants a comparative
// answer across the four schools. Non-fiqh questions are always single-path.
// For fiqh questions the routing model is consulted; any model or parse
// failure falls back to the deterministic keyword check, and identical
// questions are answered from the decision cache.
func (o *Orchestrator) ShouldUseMultiMadhab(ctx context.Context, question string) (bool, string) {
	isFiqh, category := classify.IsFiqhQuestion(question)
	if !isFiqh {
		return false, fmt.Sprintf("Question is about %s, not fiqh. Multi-madhab only for fiqh questions.", category)
	}

	cacheKey := decisionCacheKey(question)
	if o.decisions != nil {
		if v, ok := o.decisions.Get(cacheKey); ok {
			if d, ok := v.(Decision); ok {
				return d.MultiMadhab, d.Reason
			}
		}
	}

	decision, err := o.analyzeWithLLM(ctx, question)
	if err != nil {
		logger.Errorf("llm routing failed: %v, falling back to keyword check", err)
		multi, reason := fallbackKeywordCheck(question)
		decision = Decision{MultiMadhab: multi, Reason: reason}
	}

	if o.decisions != nil {
		o.decisions.Set(cacheKey, decision, o.decisionTTL)
	}
	return decision.MultiMadhab, decision.Reason
}

func decisionCacheKey(question string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(strings.ToLower(question))))
	return "madhab_decision:" + hex.EncodeToString(sum[:])
}

const analysisPromptTemplate = `You are an expert Islamic scholar and orchestration planner. Decide how to answer the user's query safely and comprehensively.

Question: "%s"

Domains to cover when relevant:
- Fiqh (jurisprudence): Maliki, Hanafi, Shafi'i, Hanbali
- Quran and authentic Hadith: include the texts EXACTLY as provided (do not alter)
- General Islamic topics (aqidah, seerah, tafsir): balanced and respectful

Use multi-madhab when:
- The question is a general fiqh ruling that might vary across schools
- The user asks for comparison/differences between schools
- No school is specified and comparative view improves clarity

Do NOT use multi-madhab when:
- Greeting or non-religious chat
- A single specific madhab is explicitly requested
- The topic is non-fiqh (pure Quran/Hadith retrieval or general info)

Return ONLY JSON in this exact format:
{
  "needs_multi_madhab": true/false,
  "needs_web_search": true/false,
  "reason": "1-2 concise sentences explaining the decision"
}`

func (o *Orchestrator) analyzeWithLLM(ctx context.Context, question string) (Decision, error) {
	if o.llmProvider == nil {
		return Decision{}, fmt.Errorf("no llm provider configured")
	}
	response, err := o.llmProvider.GenerateCompletion(ctx, fmt.Sprintf(analysisPromptTemplate, question))
	if err != nil {
		return Decision{}, err
	}
	decision, err := parseDecision(response)
	if err != nil {
		return Decision{}, err
	}
	logger.Infof("orchestrator llm analysis: needs_multi_madhab=%v, reason=%s", decision.MultiMadhab, decision.Reason)
	return decision, nil
}

// parseDecision extracts the routing decision from a model response. The
// whole response is tried as JSON first, then the first balanced brace block,
// then a last-resort scan for a literal true flag.
func parseDecision(response string) (Decision, error) {
	var d Decision
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &d); err == nil {
		return withDefaultReason(d), nil
	}

	if block, ok := firstJSONObject(response); ok {
		if err := json.Unmarshal([]byte(block), &d); err == nil {
			return withDefaultReason(d), nil
		}
		logger.Warnf("failed to parse extracted JSON: %.100s", block)
	}

	if strings.Contains(strings.ToLower(response), "true") {
		return Decision{MultiMadhab: true, Reason: "LLM determined multi-madhab response is needed"}, nil
	}
	return Decision{MultiMadhab: false, Reason: "LLM determined single response is sufficient"}, nil
}

// firstJSONObject returns the first balanced {...} block in s.
func firstJSONObject(s string) (string, bool) {
	depth := 0
	start := -1
	for i, r := range s {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func withDefaultReason(d Decision) Decision {
	if d.Reason == "" {
		d.Reason = "LLM analysis completed"
	}
	return d
}

// multiMadhabIndicators mark an explicit request for cross-school comparison.
var multiMadhabIndicators = []string{
	"all madhabs", "all schools", "compare", "differences",
	"مقارنة", "الفرق", "جميع المذاهب", "كل المذاهب",
}

// specificMadhabIndicators mark a question scoped to one named school.
var specificMadhabIndicators = []string{
	"maliki", "hanafi", "shafii", "hanbali",
	"مالكي", "حنفي", "شافعي", "حنبلي",
}

// fallbackKeywordCheck is the deterministic routing used when the model is
// unavailable. Explicit comparison wins over a named school; general fiqh
// questions default to the comparative path.
func fallbackKeywordCheck(question string) (bool, string) {
	lower := strings.ToLower(question)

	for _, indicator := range multiMadhabIndicators {
		if strings.Contains(lower, indicator) {
			return true, "User explicitly asked for comparison across madhabs"
		}
	}
	for _, indicator := range specificMadhabIndicators {
		if strings.Contains(lower, indicator) {
			return false, "Question is about a specific madhab, not multi-madhab comparison"
		}
	}
	return true, "General fiqh question - provide multi-madhab perspective"
}

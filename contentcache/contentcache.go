// Package contentcache serves Quran and Hadith lookups from an in-process
// cache, so the orchestrator can enrich answers without calling external
// scripture APIs on the hot path.
package contentcache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/h9-tec/al-muwatta-ai/cache"
	"github.com/h9-tec/al-muwatta-ai/common/logger"
)

const (
	// DefaultEdition is the canonical Quran text edition.
	DefaultEdition = "quran-uthmani"

	surahKeyPrefix  = "quran_surah:"
	hadithKeyPrefix = "hadith_single:"

	surahCount = 114
)

// DefaultHadithCollections are searched when the caller does not narrow the
// collection list.
var DefaultHadithCollections = []string{"bukhari", "muslim", "malik", "abu-daud", "tirmidzi", "nasai", "ibnu-majah"}

// Surah is one cached chapter with its verses.
type Surah struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	EnglishName string `json:"englishName"`
	Ayahs       []Ayah `json:"ayahs"`
}

// Ayah is one verse within a Surah.
type Ayah struct {
	NumberInSurah int    `json:"numberInSurah"`
	Text          string `json:"text"`
}

// Hadith is one cached narration.
type Hadith struct {
	Collection  string `json:"collection"`
	Number      int    `json:"number"`
	Arabic      string `json:"arab"`
	Translation string `json:"text"`
}

// QuranMatch is one verse hit from a cache search.
type QuranMatch struct {
	SurahNumber int    `json:"surah_number"`
	SurahName   string `json:"surah_name"`
	AyahNumber  int    `json:"ayah_number"`
	Text        string `json:"text"`
}

// Context bundles scripture hits for prompt enrichment.
type Context struct {
	QuranResults  []QuranMatch `json:"quran_results"`
	HadithResults []Hadith     `json:"hadith_results"`
}

// Service retrieves Islamic scripture content from the local cache.
type Service struct {
	cache cache.Cache
}

// NewService wraps a cache with scripture accessors.
func NewService(c cache.Cache) *Service {
	return &Service{cache: c}
}

func surahKey(number int, edition string) string {
	return fmt.Sprintf("%s%d:%s", surahKeyPrefix, number, edition)
}

func hadithKey(collection string, number int) string {
	return fmt.Sprintf("%s%s:%d", hadithKeyPrefix, collection, number)
}

// PutSurah stores a Surah under its number and edition.
func (s *Service) PutSurah(surah Surah, edition string, ttl time.Duration) {
	if edition == "" {
		edition = DefaultEdition
	}
	s.cache.Set(surahKey(surah.Number, edition), surah, ttl)
}

// PutHadith stores a Hadith under its collection and number.
func (s *Service) PutHadith(h Hadith, ttl time.Duration) {
	s.cache.Set(hadithKey(h.Collection, h.Number), h, ttl)
}

// Surah returns a cached chapter, or false when absent.
func (s *Service) Surah(number int, edition string) (Surah, bool) {
	if edition == "" {
		edition = DefaultEdition
	}
	v, ok := s.cache.Get(surahKey(number, edition))
	if !ok {
		logger.Debugf("surah %d not in cache", number)
		return Surah{}, false
	}
	surah, ok := v.(Surah)
	return surah, ok
}

// Ayah resolves a "surah:ayah" reference like "2:255" from cached chapters.
func (s *Service) Ayah(reference, edition string) (Ayah, bool) {
	var surahNum, ayahNum int
	if _, err := fmt.Sscanf(reference, "%d:%d", &surahNum, &ayahNum); err != nil {
		return Ayah{}, false
	}
	surah, ok := s.Surah(surahNum, edition)
	if !ok {
		return Ayah{}, false
	}
	for _, ayah := range surah.Ayahs {
		if ayah.NumberInSurah == ayahNum {
			return ayah, true
		}
	}
	return Ayah{}, false
}

// Hadith returns a cached narration, or false when absent.
func (s *Service) Hadith(collection string, number int) (Hadith, bool) {
	v, ok := s.cache.Get(hadithKey(collection, number))
	if !ok {
		return Hadith{}, false
	}
	h, ok := v.(Hadith)
	return h, ok
}

// SearchQuran scans cached Surahs for a substring match in verse text. Plain
// text search only; semantic matching is the engine's job.
func (s *Service) SearchQuran(query, edition string, limit int) []QuranMatch {
	if edition == "" {
		edition = DefaultEdition
	}
	if limit <= 0 {
		limit = 5
	}
	lower := strings.ToLower(query)

	var matches []QuranMatch
	for num := 1; num <= surahCount && len(matches) < limit; num++ {
		surah, ok := s.Surah(num, edition)
		if !ok {
			continue
		}
		for _, ayah := range surah.Ayahs {
			if !strings.Contains(strings.ToLower(ayah.Text), lower) {
				continue
			}
			matches = append(matches, QuranMatch{
				SurahNumber: num,
				SurahName:   surah.EnglishName,
				AyahNumber:  ayah.NumberInSurah,
				Text:        ayah.Text,
			})
			if len(matches) >= limit {
				break
			}
		}
	}
	logger.Infof("found %d matching verses for %q", len(matches), query)
	return matches
}

// SearchHadith scans cached narrations for a substring match in the Arabic
// text or the translation, restricted to the given collections.
func (s *Service) SearchHadith(query string, collections []string, limit int) []Hadith {
	if len(collections) == 0 {
		collections = DefaultHadithCollections
	}
	if limit <= 0 {
		limit = 10
	}
	wanted := make(map[string]bool, len(collections))
	for _, c := range collections {
		wanted[c] = true
	}
	lower := strings.ToLower(query)

	keys := s.cache.Keys()
	sort.Strings(keys) // deterministic scan order

	var matches []Hadith
	for _, key := range keys {
		if len(matches) >= limit {
			break
		}
		if !strings.HasPrefix(key, hadithKeyPrefix) {
			continue
		}
		v, ok := s.cache.Get(key)
		if !ok {
			continue
		}
		h, ok := v.(Hadith)
		if !ok || !wanted[h.Collection] {
			continue
		}
		if strings.Contains(strings.ToLower(h.Arabic), lower) ||
			strings.Contains(strings.ToLower(h.Translation), lower) {
			matches = append(matches, h)
		}
	}
	logger.Infof("found %d matching hadiths for %q", len(matches), query)
	return matches
}

// MuwattaHadiths returns cached narrations from Muwatta Malik, the primary
// Maliki source collection.
func (s *Service) MuwattaHadiths(limit int) []Hadith {
	if limit <= 0 {
		limit = 100
	}
	var hadiths []Hadith
	for num := 1; num <= 1587 && len(hadiths) < limit; num++ {
		if h, ok := s.Hadith("malik", num); ok {
			hadiths = append(hadiths, h)
		}
	}
	return hadiths
}

// ContextForQuestion gathers scripture hits for a question.
func (s *Service) ContextForQuestion(question string, includeQuran, includeHadith bool, maxResults int) Context {
	if maxResults <= 0 {
		maxResults = 5
	}
	var ctx Context
	if includeQuran {
		ctx.QuranResults = s.SearchQuran(question, DefaultEdition, maxResults)
	}
	if includeHadith {
		ctx.HadithResults = s.SearchHadith(question, []string{"bukhari", "muslim", "malik"}, maxResults)
	}
	return ctx
}

// FormatContext renders scripture hits as a prompt section. Headers follow
// the requested language; at most three entries per type.
func FormatContext(ctx Context, language string) string {
	arabic := strings.EqualFold(language, "arabic")
	var parts []string

	if len(ctx.QuranResults) > 0 {
		if arabic {
			parts = append(parts, "## آيات قرآنية ذات صلة:")
		} else {
			parts = append(parts, "## Relevant Quranic Verses:")
		}
		for i, verse := range ctx.QuranResults {
			if i >= 3 {
				break
			}
			parts = append(parts, fmt.Sprintf("\n%d. %s (%d): %s", i+1, verse.SurahName, verse.AyahNumber, verse.Text))
		}
	}

	if len(ctx.HadithResults) > 0 {
		if arabic {
			parts = append(parts, "\n\n## أحاديث نبوية:")
		} else {
			parts = append(parts, "\n\n## Relevant Hadiths:")
		}
		for i, h := range ctx.HadithResults {
			if i >= 3 {
				break
			}
			text := h.Arabic
			if len([]rune(text)) > 200 {
				text = string([]rune(text)[:200])
			}
			parts = append(parts, fmt.Sprintf("\n%d. [%s] %s...", i+1, titleCase(h.Collection), text))
		}
	}
	return strings.Join(parts, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

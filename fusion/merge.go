// Package fusion merges ranked result lists coming back from the per-school
// collections into one globally ordered list.
package fusion

import (
	"sort"

	"github.com/h9-tec/al-muwatta-ai/schema"
)

// MergeRanked flattens per-school result lists into a single list ordered by
// descending score. Ties break on ascending school key, then ascending point
// ID, so the merged order is a pure function of its inputs. A non-positive
// limit means no truncation.
func MergeRanked(lists map[string][]schema.SearchResult, limit int) []schema.SearchResult {
	total := 0
	for _, list := range lists {
		total += len(list)
	}
	merged := make([]schema.SearchResult, 0, total)
	for _, list := range lists {
		merged = append(merged, list...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		if merged[i].Madhab != merged[j].Madhab {
			return merged[i].Madhab < merged[j].Madhab
		}
		return merged[i].Document.ID < merged[j].Document.ID
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// MergeByID collapses duplicate point IDs across lists, keeping the highest
// scoring occurrence of each, then reorders with the same tie rules as
// MergeRanked. Chunk IDs are unique per collection, so duplicates only appear
// when the same source text was ingested into several schools.
func MergeByID(lists map[string][]schema.SearchResult, limit int) []schema.SearchResult {
	best := make(map[string]schema.SearchResult)
	for _, list := range lists {
		for _, r := range list {
			prev, seen := best[r.Document.ID]
			if !seen || r.Score > prev.Score {
				best[r.Document.ID] = r
			}
		}
	}

	deduped := map[string][]schema.SearchResult{"": make([]schema.SearchResult, 0, len(best))}
	for _, r := range best {
		deduped[""] = append(deduped[""], r)
	}
	return MergeRanked(deduped, limit)
}

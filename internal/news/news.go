package news

import (
	"strings"
	"time"

	"github.com/Hunterhghs/HHeuristics-News/internal/metrics"
)

// Article is a single headline normalized from a feed entry.
// PublishedAt keeps the raw source-provided date string.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Summary     string `json:"summary"`
}

// Batch is one generation result held by the cache. A refresh produces
// a new Batch rather than mutating the old one.
type Batch struct {
	GeneratedAt time.Time
	TTL         time.Duration
	Articles    []Article
}

// Merge deduplicates articles by normalized title, interleaves them
// round-robin by source so no single feed dominates the front of the
// list, and truncates the result to limit.
func Merge(articles []Article, limit int) []Article {
	mixed := interleave(dedupe(articles))
	if limit >= 0 && len(mixed) > limit {
		mixed = mixed[:limit]
	}
	return mixed
}

// dedupe keeps the first-seen article for each lowercase title,
// preserving the original relative order of first occurrences.
func dedupe(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		key := strings.ToLower(a.Title)
		if _, dup := seen[key]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// interleave groups articles by source in first-appearance order and
// emits them in sweeps, one article per source per sweep. Each source
// keeps its internal order; the drain is index-based per group.
func interleave(articles []Article) []Article {
	groups := make(map[string][]Article)
	var order []string
	for _, a := range articles {
		if _, ok := groups[a.Source]; !ok {
			order = append(order, a.Source)
		}
		groups[a.Source] = append(groups[a.Source], a)
	}

	next := make(map[string]int, len(order))
	out := make([]Article, 0, len(articles))
	for len(out) < len(articles) {
		for _, src := range order {
			if i := next[src]; i < len(groups[src]) {
				out = append(out, groups[src][i])
				next[src] = i + 1
			}
		}
	}
	return out
}

// Package summarize enriches a merged article batch with short
// AI-generated summaries. Enrichment is strictly best-effort: any
// transport or parse problem returns the originals unchanged.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Hunterhghs/HHeuristics-News/internal/logger"
	"github.com/Hunterhghs/HHeuristics-News/internal/metrics"
	"github.com/Hunterhghs/HHeuristics-News/internal/news"
	"github.com/Hunterhghs/HHeuristics-News/internal/ratelimit"
)

// promptSummaryLimit bounds the per-article description included in
// the prompt, in runes.
const promptSummaryLimit = 400

// TextGenerator is the external summarization capability. The hosted
// model behind it is opaque configuration.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Summarizer struct {
	gen     TextGenerator
	limiter *ratelimit.Limiter
}

// New builds a Summarizer. A nil generator disables enrichment
// entirely (articles pass through untouched).
func New(gen TextGenerator, limiter *ratelimit.Limiter) *Summarizer {
	return &Summarizer{gen: gen, limiter: limiter}
}

// Enrich rewrites title and summary in place for every article the
// model answered for; source, url and publishedAt are never altered.
// Empty input returns immediately without an external call.
func (s *Summarizer) Enrich(ctx context.Context, articles []news.Article) []news.Article {
	if len(articles) == 0 || s.gen == nil {
		return articles
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return articles
	}

	raw, err := s.gen.Generate(ctx, buildPrompt(articles))
	if err != nil {
		logger.Error("summary generation failed", "error", err)
		metrics.Global.IncrementSummaryFailures()
		return articles
	}

	payload, ok := parsePayload(raw)
	if !ok {
		logger.Warn("unusable summary response", "length", len(raw))
		metrics.Global.IncrementSummaryFailures()
		return articles
	}

	applied := 0
	for i := range articles {
		if i >= len(payload.Items) {
			break
		}
		item := payload.Items[i]
		if title := strings.TrimSpace(item.Title); title != "" {
			articles[i].Title = title
		}
		if summary := strings.TrimSpace(item.Summary); summary != "" {
			articles[i].Summary = summary
		}
		applied++
	}
	metrics.Global.AddSummariesApplied(applied)
	logger.Info("applied summaries", "applied", applied, "articles", len(articles))
	return articles
}

func buildPrompt(articles []news.Article) string {
	var b strings.Builder
	b.WriteString("You are a news editor. Rewrite each headline below as a clear title ")
	b.WriteString("and a 2-3 sentence summary in a neutral tone.\n\n")
	b.WriteString("Respond with a JSON object only, no other text, of the shape:\n")
	b.WriteString(`{"items": [{"title": "...", "summary": "..."}]}` + "\n")
	b.WriteString("with exactly one item per input article, in the same order.\n\nArticles:\n")

	for i, a := range articles {
		fmt.Fprintf(&b, "%d. title: %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "   source: %s\n", a.Source)
		if a.PublishedAt != "" {
			fmt.Fprintf(&b, "   published: %s\n", a.PublishedAt)
		}
		if a.Summary != "" {
			fmt.Fprintf(&b, "   summary: %s\n", truncateRunes(a.Summary, promptSummaryLimit))
		}
	}
	return b.String()
}

type payloadItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type payload struct {
	Items []payloadItem `json:"items"`
}

// parsePayload attempts a strict parse of the full response, then
// falls back to the substring between the first '{' and the last '}'.
// Models wrap JSON in prose or code fences often enough that the
// fallback is load-bearing.
func parsePayload(raw string) (*payload, bool) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		return &p, true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var fallback payload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fallback); err == nil {
		return &fallback, true
	}
	return nil, false
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Package app wires the aggregation pipeline: fetch all sources, parse
// each document, merge across sources, optionally scrape full content,
// then enrich with AI summaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Hunterhghs/HHeuristics-News/internal/config"
	"github.com/Hunterhghs/HHeuristics-News/internal/feed"
	"github.com/Hunterhghs/HHeuristics-News/internal/fetch"
	"github.com/Hunterhghs/HHeuristics-News/internal/logger"
	"github.com/Hunterhghs/HHeuristics-News/internal/metrics"
	"github.com/Hunterhghs/HHeuristics-News/internal/news"
	"github.com/Hunterhghs/HHeuristics-News/internal/scraper"
	"github.com/Hunterhghs/HHeuristics-News/internal/summarize"
)

type Pipeline struct {
	cfg        *config.Config
	fetcher    *fetch.Fetcher
	summarizer *summarize.Summarizer
	extractor  *scraper.Extractor // nil unless scrape enrichment is enabled
}

func NewPipeline(cfg *config.Config, fetcher *fetch.Fetcher, summarizer *summarize.Summarizer, extractor *scraper.Extractor) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		fetcher:    fetcher,
		summarizer: summarizer,
		extractor:  extractor,
	}
}

// Generate runs one full aggregation pass and returns the resulting
// batch. It fails only when no source could be fetched at all; a run
// where some sources responded but nothing parsed is a successful
// empty run.
func (p *Pipeline) Generate(ctx context.Context) (news.Batch, error) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordGenerationTime(time.Since(start))
	}()

	results := p.fetcher.FetchAll(ctx, p.cfg.Sources)

	fetched := 0
	var all []news.Article
	for _, r := range results {
		if r.Err != nil {
			continue // already logged by the fetcher
		}
		fetched++
		items := feed.Parse(r.Body, r.Source.Name, p.cfg.MaxArticlesPerSource)
		metrics.Global.AddArticlesParsed(len(items))
		all = append(all, items...)
	}

	if fetched == 0 {
		metrics.Global.SetError("all feed sources failed")
		return news.Batch{}, fmt.Errorf("no feed source could be fetched")
	}

	if max := p.cfg.MaxArticlesPerSource * len(p.cfg.Sources); len(all) > max {
		all = all[:max]
	}

	merged := news.Merge(all, p.cfg.FinalArticleCount)

	if p.extractor != nil {
		p.extractor.EnrichArticles(ctx, merged)
	}
	if p.summarizer != nil {
		merged = p.summarizer.Enrich(ctx, merged)
	}

	metrics.Global.SetLastRun()
	logger.Info("generated news batch", "articles", len(merged), "sources_ok", fetched, "raw_entries", len(all))
	return news.Batch{Articles: merged}, nil
}

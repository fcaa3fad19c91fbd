// Package scraper optionally replaces an article's feed description
// with text extracted from the article page itself, giving the
// summarizer more to work with. Best-effort only.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Hunterhghs/HHeuristics-News/internal/logger"
	"github.com/Hunterhghs/HHeuristics-News/internal/news"
)

// contentCap bounds extracted text length in runes.
const contentCap = 1500

// minUseful is the minimum extracted length worth keeping over the
// feed description.
const minUseful = 200

// Selector cascade tried in order; the first one yielding enough
// paragraphs wins.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"p",
}

var junkIndicators = []string{
	"cookie", "subscribe", "newsletter", "advertisement",
	"sign up", "log in", "read more", "follow us",
}

type Extractor struct {
	client      *http.Client
	concurrency int
	maxArticles int
}

func New(timeout time.Duration, concurrency, maxArticles int) *Extractor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Extractor{
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
		maxArticles: maxArticles,
	}
}

// EnrichArticles fetches up to maxArticles pages with a bounded worker
// pool and swaps in the extracted body text where it is substantially
// richer than the feed description. Failures leave articles as-is.
func (e *Extractor) EnrichArticles(ctx context.Context, articles []news.Article) {
	limit := len(articles)
	if e.maxArticles > 0 && limit > e.maxArticles {
		limit = e.maxArticles
	}

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for i := 0; i < limit; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			text, err := e.extract(ctx, articles[i].URL)
			if err != nil {
				logger.Debug("article extraction failed", "url", articles[i].URL, "error", err)
				return
			}
			if len(text) >= minUseful && len(text) > len(articles[i].Summary) {
				articles[i].Summary = text
			}
		}(i)
	}
	wg.Wait()
}

func (e *Extractor) extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	var best []string
	for _, selector := range contentSelectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 && !isJunk(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			best = paragraphs
			break
		}
		if len(paragraphs) > len(best) {
			best = paragraphs
		}
	}

	if len(best) == 0 {
		return "", fmt.Errorf("no readable content")
	}
	return capRunes(strings.Join(best, " "), contentCap), nil
}

func isJunk(line string) bool {
	lower := strings.ToLower(line)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// capRunes cuts at the last sentence boundary before max when one
// exists reasonably deep into the text.
func capRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, ". "); idx > max/2 {
		return cut[:idx+1]
	}
	return cut
}

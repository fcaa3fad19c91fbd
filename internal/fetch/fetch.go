// Package fetch retrieves raw feed documents from all configured
// sources concurrently. Aggregation is best-effort: a failing source
// contributes an empty body and never aborts the others.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Hunterhghs/HHeuristics-News/internal/config"
	"github.com/Hunterhghs/HHeuristics-News/internal/logger"
	"github.com/Hunterhghs/HHeuristics-News/internal/metrics"
	"github.com/Hunterhghs/HHeuristics-News/internal/retry"
)

// maxBodyBytes caps how much of a feed response is read.
const maxBodyBytes = 2 << 20

// Result is the per-source outcome. Exactly one of Body or Err is
// meaningful.
type Result struct {
	Source config.Source
	Body   string
	Err    error
}

type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	retry   retry.Config
}

func New(timeout time.Duration, attempts int, delay time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		retry:   retry.Config{Attempts: attempts, Delay: delay, Backoff: true},
	}
}

// FetchAll issues one retrieval per source and waits for every one of
// them to settle. Results come back in source order.
func (f *Fetcher) FetchAll(ctx context.Context, sources []config.Source) []Result {
	results := make([]Result, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src config.Source) {
			defer wg.Done()
			body, err := f.fetchOne(ctx, src)
			if err != nil {
				logger.Warn("feed fetch failed", "source", src.Name, "error", err)
				metrics.Global.IncrementFeedsFailed()
			} else {
				metrics.Global.IncrementFeedsFetched()
			}
			results[i] = Result{Source: src, Body: body, Err: err}
		}(i, src)
	}
	wg.Wait()

	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}
	logger.Info("fetched feed sources", "ok", ok, "total", len(sources))
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, src config.Source) (string, error) {
	var body string
	err := retry.Do(ctx, f.retry, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, src.URL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "hhnews/1.0 (+feed aggregator)")

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		body = string(b)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	return body, nil
}

package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched         int64
	FeedsFailed          int64
	ArticlesParsed       int64
	DuplicatesFiltered   int64
	SummariesApplied     int64
	SummaryFailures      int64
	CacheHits            int64
	CacheRefreshes       int64
	CacheRefreshFailures int64

	// Timings
	LastGenerationTime    time.Duration
	AverageGenerationTime time.Duration
	TotalGenerationTime   time.Duration
	GenerationCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFailed++
}

func (m *Metrics) AddArticlesParsed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesParsed += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) AddSummariesApplied(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesApplied += int64(n)
}

func (m *Metrics) IncrementSummaryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFailures++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheRefreshes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheRefreshes++
}

func (m *Metrics) IncrementCacheRefreshFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheRefreshFailures++
}

func (m *Metrics) RecordGenerationTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastGenerationTime = duration
	m.TotalGenerationTime += duration
	m.GenerationCount++

	if m.GenerationCount > 0 {
		m.AverageGenerationTime = m.TotalGenerationTime / time.Duration(m.GenerationCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":              m.FeedsFetched,
		"feeds_failed":               m.FeedsFailed,
		"articles_parsed":            m.ArticlesParsed,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"summaries_applied":          m.SummariesApplied,
		"summary_failures":           m.SummaryFailures,
		"cache_hits":                 m.CacheHits,
		"cache_refreshes":            m.CacheRefreshes,
		"cache_refresh_failures":     m.CacheRefreshFailures,
		"last_generation_time_ms":    m.LastGenerationTime.Milliseconds(),
		"average_generation_time_ms": m.AverageGenerationTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

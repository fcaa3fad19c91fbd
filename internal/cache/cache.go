// Package cache holds the most recent successfully generated news
// batch and coordinates its regeneration. Concurrent callers hitting a
// stale cache converge on a single in-flight refresh; a failed refresh
// serves the previous batch instead of an error.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Hunterhghs/HHeuristics-News/internal/logger"
	"github.com/Hunterhghs/HHeuristics-News/internal/metrics"
	"github.com/Hunterhghs/HHeuristics-News/internal/news"
)

// GenerateFunc produces a new batch of articles. GeneratedAt and TTL
// are stamped by the cache after a successful run.
type GenerateFunc func(ctx context.Context) (news.Batch, error)

type Option func(*NewsCache)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *NewsCache) { c.now = now }
}

type NewsCache struct {
	mu       sync.RWMutex
	batch    *news.Batch
	ttl      time.Duration
	now      func() time.Time
	generate GenerateFunc
	flight   singleflight.Group
}

func New(ttl time.Duration, generate GenerateFunc, opts ...Option) *NewsCache {
	c := &NewsCache{
		ttl:      ttl,
		now:      time.Now,
		generate: generate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the held batch when fresh; otherwise it triggers one
// regeneration and returns either the fresh result, the previous batch
// on refresh failure, or an empty batch stamped with the current time
// when nothing was ever generated. It never returns an error.
func (c *NewsCache) Current(ctx context.Context) news.Batch {
	if b, ok := c.fresh(); ok {
		metrics.Global.IncrementCacheHits()
		return b
	}

	prev, populated := c.snapshot()
	b, err := c.refresh(ctx, false)
	if err != nil {
		metrics.Global.IncrementCacheRefreshFailures()
		if populated {
			logger.Warn("refresh failed, serving stale batch", "error", err, "generated_at", prev.GeneratedAt)
			return prev
		}
		logger.Error("refresh failed with no previous batch", "error", err)
		return news.Batch{GeneratedAt: c.now(), TTL: c.ttl}
	}
	return b
}

// Refresh forces a regeneration regardless of freshness, sharing the
// in-flight call with any concurrent Current callers. Used by the
// background tick.
func (c *NewsCache) Refresh(ctx context.Context) error {
	_, err := c.refresh(ctx, true)
	return err
}

func (c *NewsCache) refresh(ctx context.Context, force bool) (news.Batch, error) {
	v, err, _ := c.flight.Do("refresh", func() (interface{}, error) {
		// A caller that queued behind a completed flight should not
		// start another upstream run.
		if !force {
			if b, ok := c.fresh(); ok {
				return b, nil
			}
		}

		b, err := c.generate(ctx)
		if err != nil {
			return nil, err
		}
		b.GeneratedAt = c.now()
		b.TTL = c.ttl

		// Whole-value swap so readers never see a half-updated batch.
		c.mu.Lock()
		c.batch = &b
		c.mu.Unlock()

		metrics.Global.IncrementCacheRefreshes()
		return b, nil
	})
	if err != nil {
		return news.Batch{}, err
	}
	return v.(news.Batch), nil
}

func (c *NewsCache) fresh() (news.Batch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.batch == nil {
		return news.Batch{}, false
	}
	if c.now().Sub(c.batch.GeneratedAt) < c.batch.TTL {
		return *c.batch, true
	}
	return news.Batch{}, false
}

func (c *NewsCache) snapshot() (news.Batch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.batch == nil {
		return news.Batch{}, false
	}
	return *c.batch, true
}

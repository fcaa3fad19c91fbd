package ratelimit

import (
	"sync"
	"time"

	"github.com/Hunterhghs/HHeuristics-News/internal/logger"
)

// Limiter caps AI requests over a rolling 24h window. A max of 0 or
// less means unlimited.
type Limiter struct {
	mu      sync.Mutex
	count   int
	max     int
	resetAt time.Time
	now     func() time.Time
}

func New(max int) *Limiter {
	return &Limiter{
		max: max,
		now: time.Now,
	}
}

// Allow reserves one request slot. Once the daily budget is spent it
// returns false until the window rolls over.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.resetAt.IsZero() || l.now().After(l.resetAt) {
		l.count = 0
		l.resetAt = l.now().Add(24 * time.Hour)
	}

	if l.max > 0 && l.count >= l.max {
		logger.Warn("daily AI request budget exhausted", "used", l.count, "max", l.max)
		return false
	}

	l.count++
	return true
}

// Stats reports the used and maximum request counts for the current
// window.
func (l *Limiter) Stats() (used, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, l.max
}

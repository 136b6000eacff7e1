package command

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdle is how long a source may stay silent before its limiter is dropped.
const limiterIdle = 5 * time.Minute

// RateLimiter implements per-source command rate limiting
type RateLimiter struct {
	mu       sync.Mutex
	sources  map[string]*sourceLimit
	perSec   rate.Limit
	burst    int
	stopChan chan struct{}
	stopOnce sync.Once
}

type sourceLimit struct {
	limiter *rate.Limiter
	lastCmd time.Time
}

// NewRateLimiter creates a limiter allowing perSecond commands per source
// with the given burst. A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	rl := &RateLimiter{
		sources:  make(map[string]*sourceLimit),
		perSec:   rate.Limit(perSecond),
		burst:    burst,
		stopChan: make(chan struct{}),
	}
	if perSecond <= 0 {
		rl.perSec = rate.Inf
	}

	// Start cleanup goroutine
	go rl.cleanupLoop()

	return rl
}

// Allow checks if source can execute a command now
func (rl *RateLimiter) Allow(source string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	limit, exists := rl.sources[source]
	if !exists {
		limit = &sourceLimit{limiter: rate.NewLimiter(rl.perSec, rl.burst)}
		rl.sources[source] = limit
	}
	limit.lastCmd = now
	return limit.limiter.AllowN(now, 1)
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

// cleanupLoop removes idle sources every minute
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-limiterIdle))
		}
	}
}

func (rl *RateLimiter) cleanup(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, limit := range rl.sources {
		if limit.lastCmd.Before(cutoff) {
			delete(rl.sources, key)
		}
	}
}

// Len returns the number of tracked sources.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.sources)
}

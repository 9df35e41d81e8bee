package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepThreshold bounds how large the key map may grow before idle
// entries are evicted during an Allow call.
const sweepThreshold = 1024

// MemoryLimiter implements per-key rate limiting with in-process
// token buckets. It is the backend used when no Redis server is
// configured; limits then apply per process, not per cluster.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	config  Config
	limit   rate.Limit
	burst   int
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a new in-memory limiter. The token bucket
// refills at RequestsPerWindow per WindowSize with a burst of the
// full window allowance, approximating the Redis sliding window.
func NewMemoryLimiter(config Config) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*memoryEntry),
		config:  config,
		limit:   rate.Limit(float64(config.RequestsPerWindow) / config.WindowSize.Seconds()),
		burst:   config.RequestsPerWindow,
	}
}

// Allow checks if a request identified by key is allowed.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (*Result, error) {
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &memoryEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	if len(l.entries) > sweepThreshold {
		l.sweepLocked(now)
	}
	l.mu.Unlock()

	res := &Result{
		ResetAt: now.Add(l.config.WindowSize),
	}

	reservation := entry.limiter.Reserve()
	if !reservation.OK() {
		res.RetryAfter = l.config.WindowSize
		return res, nil
	}

	if delay := reservation.Delay(); delay > 0 {
		// Over the limit: give the token back instead of queueing.
		reservation.Cancel()
		res.RetryAfter = delay
		return res, nil
	}

	res.Allowed = true
	if remaining := int(entry.limiter.Tokens()); remaining > 0 {
		res.Remaining = remaining
	}
	return res, nil
}

// sweepLocked drops entries idle for longer than a full window.
// Callers must hold l.mu.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-l.config.WindowSize)
	for key, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Config returns the limiter's configuration.
func (l *MemoryLimiter) Config() Config {
	return l.config
}

// Close releases resources held by the limiter.
func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	l.entries = make(map[string]*memoryEntry)
	l.mu.Unlock()
	return nil
}

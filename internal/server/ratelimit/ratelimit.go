// Package ratelimit limits API calls per client with token buckets. Endpoints that
// share a tier draw from one bucket, so a client cannot multiply its provider budget
// by spreading calls over /api/ocr, /api/vision and /api/speech.
package ratelimit

import (
	"sync"
	"time"
)

// bucketIdleTTL is how long an unused bucket is kept.
const bucketIdleTTL = time.Hour

// TokenBucket refills at a steady rate up to its capacity.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	now := time.Now()
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastUsed:   now,
	}
}

// refill must be called with mu held.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// take consumes a token if one is available and reports the state afterwards.
func (tb *TokenBucket) take() (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)
	tb.lastUsed = now

	if tb.tokens >= 1 {
		tb.tokens--
		allowed = true
	}

	remaining = int(tb.tokens)
	resetTime = now
	if missing := float64(tb.capacity) - tb.tokens; missing > 0 && tb.refillRate > 0 {
		resetTime = now.Add(time.Duration(missing / tb.refillRate * float64(time.Second)))
	}
	return allowed, remaining, resetTime
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter manages token buckets for many clients.
type Limiter struct {
	config *Config

	mu      sync.Mutex
	buckets map[string]*TokenBucket

	stopOnce sync.Once
	stop     chan struct{}
}

// NewLimiter creates a limiter. A nil config enables a lenient default limit.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		config:  config,
		buckets: make(map[string]*TokenBucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Allow checks whether a request from clientID to path is allowed and consumes a token.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	ep := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if ep == nil {
		ep = &EndpointConfig{
			Tier:   TierDefault,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if ep.Limit <= 0 {
		return true, Info{Allowed: true, Tier: ep.Tier}
	}

	bucket := l.bucket(clientID+"|"+ep.key(path, method), ep)
	allowed, remaining, resetTime := bucket.take()

	info := Info{
		Allowed:   allowed,
		Tier:      ep.Tier,
		Limit:     ep.Limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
	if !allowed {
		// The next token arrives after 1/refillRate seconds.
		info.RetryAfter = max(time.Duration(float64(ep.Window)/float64(ep.Limit)), time.Second)
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, ep *EndpointConfig) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	capacity := ep.Burst
	if capacity <= 0 {
		capacity = ep.Limit
	}
	b := newTokenBucket(capacity, float64(ep.Limit)/ep.Window.Seconds())
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.prune(time.Now().Add(-bucketIdleTTL))
		case <-l.stop:
			return
		}
	}
}

// prune drops buckets unused since cutoff and returns how many were removed.
func (l *Limiter) prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

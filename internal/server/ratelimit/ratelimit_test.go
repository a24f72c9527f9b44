package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take()
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, remaining, reset := bucket.take()
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(2, 20.0)
	bucket.take()
	bucket.take()

	allowed, _, _ := bucket.take()
	require.False(t, allowed)

	time.Sleep(80 * time.Millisecond)

	allowed, _, _ = bucket.take()
	assert.True(t, allowed, "a token should refill after 50ms")
}

func TestLimiter_DefaultLimit(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, TierDefault, info.Tier)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_ListsAndDisabled(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		client  string
		allowed bool
	}{
		{name: "disabled", config: &Config{Enabled: false}, client: "10.0.0.1", allowed: true},
		{
			name:    "whitelisted",
			config:  &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, Whitelist: map[string]bool{"10.0.0.1": true}},
			client:  "10.0.0.1",
			allowed: true,
		},
		{
			name:    "blacklisted",
			config:  &Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute, Blacklist: map[string]bool{"10.0.0.1": true}},
			client:  "10.0.0.1",
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(tt.config)
			defer limiter.Stop()
			for i := 0; i < 20; i++ {
				allowed, info := limiter.Allow(tt.client, "/api/map", "POST")
				assert.Equal(t, tt.allowed, allowed)
				assert.Zero(t, info.Limit)
			}
		})
	}
}

func TestLimiter_ProviderTierIsShared(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: EndpointConfigs(6, time.Hour),
	})
	defer limiter.Stop()

	// Burst is a sixth of the limit: one call, whichever provider endpoint it hits.
	allowed, info := limiter.Allow("127.0.0.1", "/api/ocr", "POST")
	require.True(t, allowed)
	assert.Equal(t, TierProvider, info.Tier)
	assert.Equal(t, 6, info.Limit)

	allowed, _ = limiter.Allow("127.0.0.1", "/api/vision", "POST")
	assert.False(t, allowed, "vision draws from the same bucket as ocr")

	allowed, _ = limiter.Allow("127.0.0.2", "/api/speech", "POST")
	assert.True(t, allowed, "other clients have their own bucket")

	allowed, info = limiter.Allow("127.0.0.1", "/api/map", "POST")
	assert.True(t, allowed)
	assert.Equal(t, TierCompute, info.Tier)
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET")
		assert.True(t, allowed)
		allowed, _ = limiter.Allow("127.0.0.1", "/api/ocr", "OPTIONS")
		assert.True(t, allowed)
	}
	assert.Zero(t, limiter.Len())
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_Prune(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}
	require.Equal(t, 5, limiter.Len())

	assert.Zero(t, limiter.prune(time.Now().Add(-time.Minute)))
	assert.Equal(t, 5, limiter.prune(time.Now().Add(time.Second)))
	assert.Zero(t, limiter.Len())
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)

	allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/ocr", Method: "POST", Limit: 1, Window: time.Minute},
		{Path: "/api/admin/", Method: "POST", Limit: 2, Window: time.Minute},
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{name: "exact", path: "/api/ocr", method: "POST", wantLimit: 1},
		{name: "prefix", path: "/api/admin/reset", method: "POST", wantLimit: 2},
		{name: "wrong method", path: "/api/ocr", method: "GET", wantNil: true},
		{name: "health", path: "/health", method: "GET", wantLimit: 0},
		{name: "preflight", path: "/api/ocr", method: "OPTIONS", wantLimit: 0},
		{name: "unknown", path: "/nope", method: "POST", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_PROVIDER_LIMIT", "12")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)

	ep := MatchEndpoint("/api/speech", "POST", cfg.EndpointConfigs)
	require.NotNil(t, ep)
	assert.Equal(t, 12, ep.Limit)
	assert.Equal(t, 2, ep.Burst)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}

package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tier names group endpoints that share one bucket per client.
const (
	TierProvider = "provider" // calls a paid OCR, vision or speech API
	TierCompute  = "compute"  // server-side mapping and filling
	TierDefault  = "default"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method
	Tier   string        // Endpoints of the same tier share a bucket; empty keys by path
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// key identifies the bucket this endpoint draws from.
func (e *EndpointConfig) key(path, method string) string {
	if e.Tier != "" {
		return e.Tier
	}
	return path + ":" + method
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	providerLimit := getEnvInt("RATE_LIMIT_PROVIDER_LIMIT", 60)
	providerWindow := getEnvDuration("RATE_LIMIT_PROVIDER_WINDOW", time.Minute)

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: EndpointConfigs(providerLimit, providerWindow),
	}
}

// EndpointConfigs returns the per-endpoint limits. Provider endpoints share the given
// budget; mapping endpoints get a looser one.
func EndpointConfigs(providerLimit int, providerWindow time.Duration) []EndpointConfig {
	burst := max(providerLimit/6, 1)
	provider := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Tier: TierProvider, Limit: providerLimit, Window: providerWindow, Burst: burst}
	}
	compute := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Tier: TierCompute, Limit: 300, Window: time.Minute, Burst: 30}
	}
	return []EndpointConfig{
		provider("/api/ocr"),
		provider("/api/vision"),
		provider("/api/speech"),
		provider("/api/voice-translate"),
		compute("/api/map"),
		compute("/api/fill"),
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

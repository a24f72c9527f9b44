package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for requests that never consume tokens.
var unlimited = EndpointConfig{Tier: "unlimited"}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// It returns nil when no configuration applies. Health checks and CORS preflights
// are unlimited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodOptions || (path == "/health" && method == http.MethodGet) {
		u := unlimited
		return &u
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}

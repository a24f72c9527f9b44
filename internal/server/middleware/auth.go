// Package middleware provides HTTP middleware for site-token authentication.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// siteKey is the context key for the site a token was issued to.
const siteKey ContextKey = "site"

// SiteTokenHeader carries the token for widgets that cannot set Authorization.
const SiteTokenHeader = "X-AppyCrew-Site-Token"

// TokenValidator validates site tokens.
// This allows the middleware to work with any token service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (SiteGetter, error)
}

// SiteGetter extracts the site from token claims.
type SiteGetter interface {
	GetSite() string
}

// SiteTokenMiddleware rejects requests without a valid site token and stores the
// token's site in the request context. The token is read from a Bearer Authorization
// header or from SiteTokenHeader.
func SiteTokenMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSite(r.Context(), claims.GetSite())))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if h := strings.TrimSpace(r.Header.Get(SiteTokenHeader)); h != "" {
		return h, true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	// Handle case-insensitive "Bearer" prefix
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// WithSite returns a context carrying site.
func WithSite(ctx context.Context, site string) context.Context {
	return context.WithValue(ctx, siteKey, site)
}

// GetSite returns the authenticated site, if any.
func GetSite(r *http.Request) (string, bool) {
	site, ok := r.Context().Value(siteKey).(string)
	return site, ok && site != ""
}

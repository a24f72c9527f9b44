package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testClaims struct {
	site string
}

func (c *testClaims) GetSite() string {
	return c.site
}

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator map[string]string

func (v testTokenValidator) ValidateToken(tokenString string) (SiteGetter, error) {
	site, ok := v[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{site: site}, nil
}

func TestSiteTokenMiddleware(t *testing.T) {
	validator := testTokenValidator{"good-token": "crm.example.com"}

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantSite   string
	}{
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer good-token"}, wantStatus: http.StatusOK, wantSite: "crm.example.com"},
		{name: "lowercase bearer", headers: map[string]string{"Authorization": "bearer good-token"}, wantStatus: http.StatusOK, wantSite: "crm.example.com"},
		{name: "site token header", headers: map[string]string{SiteTokenHeader: "good-token"}, wantStatus: http.StatusOK, wantSite: "crm.example.com"},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", headers: map[string]string{"Authorization": "Basic good-token"}, wantStatus: http.StatusUnauthorized},
		{name: "extra parts", headers: map[string]string{"Authorization": "Bearer good-token extra"}, wantStatus: http.StatusUnauthorized},
		{name: "unknown token", headers: map[string]string{"Authorization": "Bearer bad-token"}, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSite string
			called := false
			handler := SiteTokenMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotSite, _ = GetSite(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/map", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			assert.Equal(t, tt.wantSite, gotSite)
		})
	}
}

func TestGetSite_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetSite(req)
	assert.False(t, ok)

	req = req.WithContext(WithSite(req.Context(), ""))
	_, ok = GetSite(req)
	assert.False(t, ok)
}

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/server"
)

const testSecret = "cli-test-secret-for-site-tokens"

func TestIssueToken(t *testing.T) {
	t.Setenv("SITE_TOKEN_SECRET", testSecret)
	t.Setenv("SITE_TOKEN_EXPIRATION_HOURS", "")

	var out bytes.Buffer
	require.NoError(t, issueToken(&out, "crm.example.com", 2))

	svc := server.NewSiteTokenService(&config.SiteTokenConfig{Secret: testSecret, ExpirationHours: 2})
	claims, err := svc.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "crm.example.com", claims.Site)
	assert.WithinDuration(t, claims.IssuedAt.Add(2*time.Hour), claims.ExpiresAt.Time, 0)
}

func TestIssueToken_Errors(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		site   string
		want   string
	}{
		{name: "no secret", site: "crm.example.com", want: "SITE_TOKEN_SECRET"},
		{name: "short secret", secret: "short", site: "crm.example.com", want: "16"},
		{name: "empty site", secret: testSecret, site: " ", want: "site"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SITE_TOKEN_SECRET", tt.secret)
			var out bytes.Buffer
			err := issueToken(&out, tt.site, 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, out.String())
		})
	}
}

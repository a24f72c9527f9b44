package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/appycrew-ocr/internal/config"
)

const testSecret = "test-secret-key-for-site-tokens-32-bytes"

func setupTestTokenService(_ *testing.T, expirationHours int) *SiteTokenService {
	return NewSiteTokenService(&config.SiteTokenConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
	})
}

func TestSiteTokenService_RoundTrip(t *testing.T) {
	service := setupTestTokenService(t, 24)

	token, err := service.GenerateToken("crm.example.com")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "crm.example.com", claims.GetSite())
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	other, err := service.GenerateToken("crm.example.com")
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "token ids make every token unique")
}

func TestSiteTokenService_GenerateToken_EmptySite(t *testing.T) {
	_, err := setupTestTokenService(t, 24).GenerateToken("  ")
	require.Error(t, err)
	assert.Equal(t, 400, HTTPStatus(err))
}

func TestSiteTokenService_ValidateToken_Rejects(t *testing.T) {
	service := setupTestTokenService(t, 24)
	valid, err := service.GenerateToken("crm.example.com")
	require.NoError(t, err)

	expired := func() string {
		claims := &Claims{
			Site: "crm.example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}()

	noSite := func() string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}()

	otherKey, err := NewSiteTokenService(&config.SiteTokenConfig{
		Secret:          "a-completely-different-secret-key",
		ExpirationHours: 24,
	}).GenerateToken("crm.example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "empty", token: "", wantErr: "empty"},
		{name: "malformed", token: "not.a.token", wantErr: "malformed"},
		{name: "expired", token: expired, wantErr: "expired"},
		{name: "wrong secret", token: otherKey, wantErr: "signature"},
		{name: "tampered", token: valid[:len(valid)-2] + "xx", wantErr: "signature"},
		{name: "no site claim", token: noSite, wantErr: "not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSiteTokenService_AsTokenValidator(t *testing.T) {
	service := setupTestTokenService(t, 1)
	token, err := service.GenerateToken("crm.example.com")
	require.NoError(t, err)

	got, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "crm.example.com", got.GetSite())

	_, err = service.AsTokenValidator().ValidateToken("garbage")
	assert.Error(t, err)
}

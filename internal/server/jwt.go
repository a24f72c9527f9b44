package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/server/middleware"
)

// Claims are the claims of a widget site token.
type Claims struct {
	Site string `json:"site"`
	jwt.RegisteredClaims
}

// GetSite returns the site the token was issued to.
// This implements the middleware.SiteGetter interface.
func (c *Claims) GetSite() string {
	return c.Site
}

// AsTokenValidator returns a TokenValidator adapter for this service.
// This allows the service to be used with middleware without creating import cycles.
func (s *SiteTokenService) AsTokenValidator() middleware.TokenValidator {
	return &siteTokenValidator{service: s}
}

type siteTokenValidator struct {
	service *SiteTokenService
}

func (v *siteTokenValidator) ValidateToken(tokenString string) (middleware.SiteGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SiteTokenService issues and validates site tokens.
type SiteTokenService struct {
	config *config.SiteTokenConfig
}

// NewSiteTokenService creates a site token service with the given configuration.
func NewSiteTokenService(cfg *config.SiteTokenConfig) *SiteTokenService {
	return &SiteTokenService{config: cfg}
}

// GenerateToken issues a token for site.
func (s *SiteTokenService) GenerateToken(site string) (string, error) {
	site = strings.TrimSpace(site)
	if site == "" {
		return "", &ErrValidation{Field: "site", Message: "is required"}
	}

	now := time.Now()
	claims := &Claims{
		Site: site,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   site,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a token and returns its claims.
func (s *SiteTokenService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid || claims.Site == "" {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultSiteTokenExpirationHours is thirty days.
const DefaultSiteTokenExpirationHours = 720

// SiteTokenConfig holds configuration for signing and checking widget site tokens.
type SiteTokenConfig struct {
	Secret          string
	ExpirationHours int
}

// NewSiteTokenConfig reads SITE_TOKEN_SECRET and SITE_TOKEN_EXPIRATION_HOURS.
// It returns nil and no error when no secret is set: site tokens are then disabled.
func NewSiteTokenConfig() (*SiteTokenConfig, error) {
	secret := os.Getenv("SITE_TOKEN_SECRET")
	if secret == "" {
		return nil, nil
	}

	expiration := DefaultSiteTokenExpirationHours
	if s := os.Getenv("SITE_TOKEN_EXPIRATION_HOURS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SITE_TOKEN_EXPIRATION_HOURS: %v", err)
		}
		expiration = n
	}

	cfg := &SiteTokenConfig{Secret: secret, ExpirationHours: expiration}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *SiteTokenConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("SITE_TOKEN_SECRET cannot be empty")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("SITE_TOKEN_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("SITE_TOKEN_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

package token

import (
	"errors"
	"time"
)

// Defaults for claim constants. These are part of the wire contract with
// existing clients and should not change casually.
const (
	DefaultIssuer   = "connexa-app"
	DefaultAudience = "connexa-users"
)

// Config configures the token service.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// Issuer is the "iss" claim (default: connexa-app).
	Issuer string `yaml:"issuer" mapstructure:"issuer"`

	// Audience is the "aud" claim (default: connexa-users).
	Audience string `yaml:"audience" mapstructure:"audience"`

	// AccessTokenTTL is the lifetime of access tokens (default: 24h).
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`

	// RefreshTokenTTL is the lifetime of refresh tokens (default: 7d).
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" mapstructure:"refresh_token_ttl"`
}

// ApplyDefaults fills zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = DefaultIssuer
	}
	if c.Audience == "" {
		c.Audience = DefaultAudience
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 24 * time.Hour
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("secret is required")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}

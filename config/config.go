// Package config loads service configuration from a YAML file and the
// environment. A .env file is read first when present, then viper merges
// config.yml with CONNEXA_-prefixed environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/connexa-app/connexa/api"
	"github.com/connexa-app/connexa/auth/revocation"
	"github.com/connexa-app/connexa/auth/token"
	"github.com/connexa-app/connexa/logger"
)

// Config is the aggregate service configuration. Each subsystem owns its
// section type; this struct only wires them together.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging    logger.Config     `yaml:"logging" mapstructure:"logging"`
	Server     ServerConfig      `yaml:"server" mapstructure:"server"`
	Token      token.Config      `yaml:"token" mapstructure:"token"`
	Password   PasswordConfig    `yaml:"password" mapstructure:"password"`
	Revocation revocation.Config `yaml:"revocation" mapstructure:"revocation"`
	RateLimit  api.RateLimits    `yaml:"ratelimit" mapstructure:"ratelimit"`
	Database   DatabaseConfig    `yaml:"database" mapstructure:"database"`
	CORS       CORSConfig        `yaml:"cors" mapstructure:"cors"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// PasswordConfig configures the credential hasher.
type PasswordConfig struct {
	// Cost is the bcrypt work factor (default: 12).
	Cost int `yaml:"cost" mapstructure:"cost"`
	// MinLength is the minimum accepted plaintext length (default: 8).
	MinLength int `yaml:"min_length" mapstructure:"min_length"`
}

// DatabaseConfig configures the SQLite user store.
type DatabaseConfig struct {
	// Path is the SQLite database file (default: connexa.db).
	Path string `yaml:"path" mapstructure:"path"`
}

// CORSConfig configures cross-origin request handling.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers" mapstructure:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
}

// ApplyDefaults fills zero-valued fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "connexa"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()

	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}

	c.Token.ApplyDefaults()

	if c.Password.Cost == 0 {
		c.Password.Cost = 12
	}
	if c.Password.MinLength == 0 {
		c.Password.MinLength = 8
	}

	if c.Revocation.SweepInterval == 0 {
		c.Revocation.SweepInterval = time.Hour
	}

	c.RateLimit.ApplyDefaults()

	if c.Database.Path == "" {
		c.Database.Path = "connexa.db"
	}

	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	// Renewal warning headers must be readable by browser clients.
	if len(c.CORS.ExposedHeaders) == 0 {
		c.CORS.ExposedHeaders = []string{"X-Token-Warning", "X-Token-Expires-In"}
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got: %d)", c.Server.Port)
	}
	if err := c.Token.Validate(); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	if c.Password.Cost < 4 || c.Password.Cost > 31 {
		return fmt.Errorf("password.cost must be between 4 and 31 (got: %d)", c.Password.Cost)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

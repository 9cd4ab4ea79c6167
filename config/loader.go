package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CONNEXA"

// Load reads configuration from the given YAML file (optional) and the
// environment, applies defaults and validates the result.
//
// Precedence, lowest to highest: defaults, config file, environment
// variables (CONNEXA_SERVER_PORT overrides server.port, etc.).
func Load(configFile string) (*Config, error) {
	// A .env file beside the binary is a development convenience.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	} else if path := findConfigFile(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// AutomaticEnv only resolves keys viper already knows about, so bind
	// the ones that may come exclusively from the environment.
	for _, key := range []string{
		"token.secret", "server.port", "database.path",
		"logging.level", "logging.format", "environment",
		"ratelimit.general", "ratelimit.login", "ratelimit.register",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// findConfigFile searches standard locations for config.yml.
func findConfigFile() string {
	searchPaths := []string{
		"./config.yml",
		"./config/config.yml",
		"./cmd/server/config.yml",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

package marketauth

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognized by [ConfigFromEnv].
const (
	envAccessSecret  = "ACCESS_TOKEN_SECRET"
	envRefreshSecret = "REFRESH_TOKEN_SECRET"
	envAccessTTL     = "ACCESS_TOKEN_TTL"
	envRefreshTTL    = "REFRESH_TOKEN_TTL"
)

// ConfigFromEnv builds a Config from environment variables on top of the
// defaults. A .env file in the working directory is loaded first when
// present; a missing file is not an error. ACCESS_TOKEN_SECRET and
// REFRESH_TOKEN_SECRET are required; ACCESS_TOKEN_TTL and REFRESH_TOKEN_TTL
// accept Go duration strings and override the 15m/7d defaults.
func ConfigFromEnv() (Config, error) {
	// Best effort: deployments usually inject env directly.
	_ = godotenv.Load()

	cfg := defaultConfig()

	access := os.Getenv(envAccessSecret)
	refresh := os.Getenv(envRefreshSecret)
	if access == "" || refresh == "" {
		return Config{}, fmt.Errorf("%s and %s must be set", envAccessSecret, envRefreshSecret)
	}
	cfg.JWT.AccessSecret = []byte(access)
	cfg.JWT.RefreshSecret = []byte(refresh)

	if v := os.Getenv(envAccessTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %v", envAccessTTL, err)
		}
		cfg.JWT.AccessTTL = ttl
	}
	if v := os.Getenv(envRefreshTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %v", envRefreshTTL, err)
		}
		cfg.JWT.RefreshTTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	APIBaseURL       string
	Port             string
	APITimeout       time.Duration
	OwnerLookupLimit int
	APISessionCookie string
	SessionCookie    string
	CookieSecure     bool
	SessionTTL       time.Duration
	LogLevel         string
	LogFormat        string
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		APIBaseURL:       "http://localhost:8000",
		Port:             "8080",
		APITimeout:       30 * time.Second,
		OwnerLookupLimit: 8,
		APISessionCookie: "access_token",
		SessionCookie:    "plantswap_sid",
		CookieSecure:     false,
		SessionTTL:       24 * time.Hour,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads configuration from an optional YAML file (PLANTSWAP_CONFIG)
// and then from environment variables, which take precedence.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, ok := os.LookupEnv("PLANTSWAP_CONFIG"); ok && path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := fc.apply(cfg); err != nil {
			return nil, err
		}
	}

	cfg.APIBaseURL = getEnv("PLANTSWAP_API_URL", cfg.APIBaseURL)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.APISessionCookie = getEnv("API_SESSION_COOKIE", cfg.APISessionCookie)
	cfg.SessionCookie = getEnv("SESSION_COOKIE", cfg.SessionCookie)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", cfg.APITimeout); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.OwnerLookupLimit, err = getInt("OWNER_LOOKUP_LIMIT", cfg.OwnerLookupLimit); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", cfg.CookieSecure); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the gateway unusable
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: api base url is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("config: api timeout must be positive, got %s", c.APITimeout)
	}
	if c.OwnerLookupLimit < 0 {
		return fmt.Errorf("config: owner lookup limit cannot be negative, got %d", c.OwnerLookupLimit)
	}
	if c.APISessionCookie == "" || c.SessionCookie == "" {
		return fmt.Errorf("config: cookie names cannot be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML form of Config. Empty fields leave the current
// value untouched.
type FileConfig struct {
	API struct {
		BaseURL       string `yaml:"base_url"`
		Timeout       string `yaml:"timeout"`
		SessionCookie string `yaml:"session_cookie"`
	} `yaml:"api"`
	Server struct {
		Port          string `yaml:"port"`
		SessionCookie string `yaml:"session_cookie"`
		CookieSecure  *bool  `yaml:"cookie_secure"`
		SessionTTL    string `yaml:"session_ttl"`
	} `yaml:"server"`
	Directory struct {
		OwnerLookupLimit *int `yaml:"owner_lookup_limit"`
	} `yaml:"directory"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadFile reads and parses a gateway configuration file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file: %w", err)
	}

	return fc, nil
}

func (fc FileConfig) apply(cfg *Config) error {
	setString(&cfg.APIBaseURL, fc.API.BaseURL)
	setString(&cfg.APISessionCookie, fc.API.SessionCookie)
	setString(&cfg.Port, fc.Server.Port)
	setString(&cfg.SessionCookie, fc.Server.SessionCookie)
	setString(&cfg.LogLevel, fc.Log.Level)
	setString(&cfg.LogFormat, fc.Log.Format)

	if fc.Server.CookieSecure != nil {
		cfg.CookieSecure = *fc.Server.CookieSecure
	}
	if fc.Directory.OwnerLookupLimit != nil {
		cfg.OwnerLookupLimit = *fc.Directory.OwnerLookupLimit
	}
	if err := setDuration(&cfg.APITimeout, "api.timeout", fc.API.Timeout); err != nil {
		return err
	}
	return setDuration(&cfg.SessionTTL, "server.session_ttl", fc.Server.SessionTTL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, field, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config file: invalid %s: %w", field, err)
	}
	*dst = d
	return nil
}

// Package config loads the client configuration from
// ~/.newskoo/config.yaml, with environment overrides for the URLs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// APIBaseURL is the backend REST base, e.g. https://newskoo.example.
	APIBaseURL string `yaml:"api_base_url"`
	// RealtimeURL is the websocket endpoint; derived from APIBaseURL
	// when empty.
	RealtimeURL string `yaml:"realtime_url"`
	Theme       string `yaml:"theme"`
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`
}

const defaultAPIBaseURL = "http://localhost:5000"

func defaults() *Config {
	return &Config{
		APIBaseURL: defaultAPIBaseURL,
		Theme:      "default_theme",
	}
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(homeDir, ".newskoo", "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// first run, defaults apply
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("NEWSKOO_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("NEWSKOO_REALTIME_URL"); v != "" {
		cfg.RealtimeURL = v
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	return cfg, nil
}

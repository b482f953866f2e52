// Package config loads gateway configuration from an optional YAML
// file overlaid by environment variables. Credentials are validated
// here, eagerly, so a misconfigured process refuses to start instead
// of failing on its first tool call.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPort is used when neither the config file nor PORT set one.
const DefaultPort = 4000

// Config holds everything the gateway needs at startup.
type Config struct {
	Port         int    `yaml:"port"`
	SaltboxURL   string `yaml:"saltbox_url"`
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	GatewayToken string `yaml:"gateway_token"`
	HintsDir     string `yaml:"hints_dir"`
	LogLevel     string `yaml:"log_level"`
}

// Load builds a Config from the optional YAML file at path (empty
// path skips the file), then overlays environment variables, then
// validates. Environment always wins over the file.
func Load(path string) (Config, error) {
	cfg := Config{
		Port:     DefaultPort,
		LogLevel: "info",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("PORT must be an integer, got %q", v)
		}
		cfg.Port = n
	}
	overlay(&cfg.SaltboxURL, "SALTBOX_URL")
	overlay(&cfg.APIKey, "SALTBOX_API_KEY")
	overlay(&cfg.APISecret, "SALTBOX_API_SECRET")
	overlay(&cfg.GatewayToken, "MCP_GATEWAY_TOKEN")
	overlay(&cfg.HintsDir, "HINTS_DIR")
	overlay(&cfg.LogLevel, "LOG_LEVEL")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.SaltboxURL == "" {
		return fmt.Errorf("SALTBOX_URL is required")
	}
	u, err := url.Parse(c.SaltboxURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SALTBOX_URL %q is not a valid URL", c.SaltboxURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("SALTBOX_API_KEY is required")
	}
	if c.APISecret == "" {
		return fmt.Errorf("SALTBOX_API_SECRET is required")
	}
	return nil
}

// Addr returns the loopback-only listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

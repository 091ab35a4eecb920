// Package config models promptform.yml, the service and CLI configuration
// file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config models promptform.yml.
type Config struct {
	Listen   string `yaml:"listen"`
	BasePath string `yaml:"base_path"`
	LogLevel string `yaml:"log_level"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Gemini struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"gemini"`
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "promptform.yml")
}

// Default returns a config with every non-credential value filled in.
func Default() *Config {
	var cfg Config
	cfg.Listen = ":8080"
	cfg.LogLevel = "info"
	cfg.Database.Path = "promptform.db"
	cfg.Gemini.Model = "gemini-1.5-flash"
	return &cfg
}

// Load reads the config from a workspace, falling back to defaults when the
// file does not exist. The GEMINI_API_KEY environment variable overrides the
// file so the credential can stay out of version control.
func Load(workspace string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(workspace))
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: invalid yaml in %s: %w", Path(workspace), err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: invalid yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("config: base_path must start with /")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("config: database.path is required")
	}
	return nil
}

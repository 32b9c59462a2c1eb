package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// APIKeyEnvVar is the environment variable holding the completion service
// API key. The key is never stored in the config file.
const APIKeyEnvVar = "OPENAI_API_KEY"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ORDERDESK_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: ORDERDESK_MODEL -> model, etc.
	if err := k.Load(env.Provider("ORDERDESK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ORDERDESK_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.SOPPath == "" {
		return fmt.Errorf("sop_path is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.MaxToolIterations <= 0 {
		return fmt.Errorf("max_tool_iterations must be positive")
	}
	if c.ResponseTimeoutSec <= 0 {
		return fmt.Errorf("response_timeout_sec must be positive")
	}
	if c.SessionTTLMin <= 0 {
		return fmt.Errorf("session_ttl_min must be positive")
	}
	return nil
}

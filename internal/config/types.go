package config

// Config is the top-level orderdesk configuration, corresponding to .orderdesk.yml.
type Config struct {
	Model              string `yaml:"model" koanf:"model"`
	SOPPath            string `yaml:"sop_path" koanf:"sop_path"`
	DataDir            string `yaml:"data_dir" koanf:"data_dir"`
	MaxHistory         int    `yaml:"max_history" koanf:"max_history"`
	TopK               int    `yaml:"top_k" koanf:"top_k"`
	MaxToolIterations  int    `yaml:"max_tool_iterations" koanf:"max_tool_iterations"`
	ResponseTimeoutSec int    `yaml:"response_timeout_sec" koanf:"response_timeout_sec"`
	SessionTTLMin      int    `yaml:"session_ttl_min" koanf:"session_ttl_min"`
	Port               int    `yaml:"port" koanf:"port"`
	AllowAll           bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:              "gpt-4o-mini",
		SOPPath:            "support_sop.md",
		DataDir:            ".orderdesk",
		MaxHistory:         5,
		TopK:               3,
		MaxToolIterations:  5,
		ResponseTimeoutSec: 60,
		SessionTTLMin:      30,
		Port:               8080,
	}
}

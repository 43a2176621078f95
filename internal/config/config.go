// ABOUTME: Configuration loading and parsing for agentboard
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete agentboard configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Agents   AgentsConfig   `yaml:"agents"`
	Services ServicesConfig `yaml:"services"`
	Stream   StreamConfig   `yaml:"stream"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds the durable audit database configuration.
// An empty path disables durable audit writes entirely.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// AgentsConfig holds the registry file and dispatch timing configuration
type AgentsConfig struct {
	RegistryPath  string `yaml:"registry_path"` // TOML agent definitions; empty = built-in defaults
	ContextWindow int    `yaml:"context_window"`

	GenerateTimeout time.Duration `yaml:"-"`
	MediaTimeout    time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	GenerateTimeoutRaw string `yaml:"generate_timeout"`
	MediaTimeoutRaw    string `yaml:"media_timeout"`
}

// ServicesConfig holds the outbound integrations. Each service is
// enabled by the presence of its API key.
type ServicesConfig struct {
	LLM    LLMConfig   `yaml:"llm"`
	Search APIConfig   `yaml:"search"`
	Scrape APIConfig   `yaml:"scrape"`
	Media  APIConfig   `yaml:"media"`
	Email  EmailConfig `yaml:"email"`
}

// LLMConfig configures the reply generator backend
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// APIConfig is the shared shape for keyed HTTP services
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// EmailConfig configures outbound mail
type EmailConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	From    string `yaml:"from"`
}

// StreamConfig holds live-update stream configuration
type StreamConfig struct {
	PollInterval time.Duration `yaml:"-"`

	PollIntervalRaw string `yaml:"poll_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Services.LLM.APIKey != "" {
		if c.Services.LLM.BaseURL == "" {
			return fmt.Errorf("services.llm.base_url is required when an API key is set")
		}
		if c.Services.LLM.Model == "" {
			return fmt.Errorf("services.llm.model is required when an API key is set")
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Agents.GenerateTimeoutRaw != "" {
		cfg.Agents.GenerateTimeout, err = time.ParseDuration(cfg.Agents.GenerateTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing generate_timeout %q: %w", cfg.Agents.GenerateTimeoutRaw, err)
		}
	}

	if cfg.Agents.MediaTimeoutRaw != "" {
		cfg.Agents.MediaTimeout, err = time.ParseDuration(cfg.Agents.MediaTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing media_timeout %q: %w", cfg.Agents.MediaTimeoutRaw, err)
		}
	}

	if cfg.Stream.PollIntervalRaw != "" {
		cfg.Stream.PollInterval, err = time.ParseDuration(cfg.Stream.PollIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing poll_interval %q: %w", cfg.Stream.PollIntervalRaw, err)
		}
	}

	return nil
}

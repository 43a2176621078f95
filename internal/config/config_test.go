// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

database:
  path: "./audit.db"

auth:
  jwt_secret: "secret"

agents:
  registry_path: "./agents.toml"
  context_window: 8
  generate_timeout: "30s"
  media_timeout: "2m"

services:
  llm:
    base_url: "https://api.deepseek.com"
    api_key: "sk-test"
    model: "deepseek-chat"
  search:
    base_url: "https://google.serper.dev"
    api_key: "serper-key"

stream:
  poll_interval: "2s"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Database.Path != "./audit.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./audit.db")
	}
	if cfg.Agents.ContextWindow != 8 {
		t.Errorf("ContextWindow = %d, want 8", cfg.Agents.ContextWindow)
	}
	if cfg.Agents.GenerateTimeout != 30*time.Second {
		t.Errorf("GenerateTimeout = %v, want 30s", cfg.Agents.GenerateTimeout)
	}
	if cfg.Agents.MediaTimeout != 2*time.Minute {
		t.Errorf("MediaTimeout = %v, want 2m", cfg.Agents.MediaTimeout)
	}
	if cfg.Stream.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.Stream.PollInterval)
	}
	if cfg.Services.LLM.Model != "deepseek-chat" {
		t.Errorf("LLM.Model = %q, want %q", cfg.Services.LLM.Model, "deepseek-chat")
	}
	if cfg.Services.Search.APIKey != "serper-key" {
		t.Errorf("Search.APIKey = %q, want %q", cfg.Services.Search.APIKey, "serper-key")
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "expanded-secret")
	t.Setenv("TEST_HTTP_ADDR", ":9090")

	configPath := writeConfig(t, `
server:
  http_addr: "${TEST_HTTP_ADDR}"
auth:
  jwt_secret: "${TEST_JWT_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "expanded-secret" {
		t.Errorf("JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "expanded-secret")
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, ":9090")
	}
}

func TestLoad_UnsetEnvVarBecomesEmpty(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"
auth:
  jwt_secret: "${DEFINITELY_NOT_SET_VAR_12345}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "" {
		t.Errorf("JWTSecret = %q, want empty", cfg.Auth.JWTSecret)
	}
}

func TestLoad_MissingHTTPAddr(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./audit.db"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "http_addr") {
		t.Errorf("error = %v, want mention of http_addr", err)
	}
}

func TestLoad_LLMKeyWithoutModel(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"
services:
  llm:
    base_url: "https://api.deepseek.com"
    api_key: "sk-test"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "model") {
		t.Errorf("error = %v, want mention of model", err)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"
agents:
  generate_timeout: "not-a-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() error = nil, want duration parse error")
	}
	if !strings.Contains(err.Error(), "generate_timeout") {
		t.Errorf("error = %v, want mention of generate_timeout", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want read error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "server: [not: valid")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestLoad_EmptyDatabasePathIsAllowed(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":8080"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "" {
		t.Errorf("Database.Path = %q, want empty", cfg.Database.Path)
	}
}

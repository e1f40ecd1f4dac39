package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "spreadview-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPREADVIEW_PORT", "SQLITE_PATH", "UPSTREAM_BASE_URL",
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_DATA_URL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
server:
  host: "0.0.0.0"
  port: 9000
storage:
  sqlite_path: "/tmp/spreadview/claims.db"
  export_dir: "/tmp/spreadview/exports"
upstream:
  base_url: "https://analysis.example.com"
  requests_per_sec: 10
  max_retries: 4
  timeout_sec: 15
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  data_url: "https://data.alpaca.markets"
  feed: "iex"
  rate_limit_per_min: 120
market:
  source: "alpaca"
  exchange: "America/New_York"
chart:
  width: 1024
  height: 512
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.Storage.SQLitePath != "/tmp/spreadview/claims.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/spreadview/claims.db")
	}
	if cfg.Upstream.BaseURL != "https://analysis.example.com" {
		t.Errorf("Upstream.BaseURL = %q, want %q", cfg.Upstream.BaseURL, "https://analysis.example.com")
	}
	if cfg.Upstream.RequestsPerSec != 10 || cfg.Upstream.MaxRetries != 4 || cfg.Upstream.TimeoutSec != 15 {
		t.Errorf("Upstream knobs = %+v, want 10/4/15", cfg.Upstream)
	}
	if cfg.Alpaca.APIKey != "test-key" || cfg.Alpaca.APISecret != "test-secret" {
		t.Errorf("Alpaca credentials = %q/%q, want test-key/test-secret", cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	}
	if cfg.Market.Source != "alpaca" {
		t.Errorf("Market.Source = %q, want %q", cfg.Market.Source, "alpaca")
	}
	if cfg.Chart.Width != 1024 || cfg.Chart.Height != 512 {
		t.Errorf("Chart dims = %dx%d, want 1024x512", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
upstream:
  base_url: "https://analysis.example.com"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.SQLitePath != "data/claims.db" {
		t.Errorf("default Storage.SQLitePath = %q, want data/claims.db", cfg.Storage.SQLitePath)
	}
	if cfg.Market.Source != "upstream" {
		t.Errorf("default Market.Source = %q, want %q", cfg.Market.Source, "upstream")
	}
	if cfg.Market.Exchange != "America/New_York" {
		t.Errorf("default Market.Exchange = %q, want America/New_York", cfg.Market.Exchange)
	}
	if cfg.Chart.Width != 800 || cfg.Chart.Height != 400 {
		t.Errorf("default Chart dims = %dx%d, want 800x400", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Upstream.RequestsPerSec != 5 || cfg.Upstream.MaxRetries != 3 {
		t.Errorf("default Upstream knobs = %+v, want 5/3", cfg.Upstream)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
upstream:
  base_url: "https://yaml.example.com"
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
storage:
  sqlite_path: "/original/claims.db"
`)

	t.Setenv("UPSTREAM_BASE_URL", "https://env.example.com")
	t.Setenv("SQLITE_PATH", "/env/claims.db")
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("SPREADVIEW_PORT", "7001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Upstream.BaseURL != "https://env.example.com" {
		t.Errorf("Upstream.BaseURL = %q, want env override", cfg.Upstream.BaseURL)
	}
	if cfg.Storage.SQLitePath != "/env/claims.db" {
		t.Errorf("Storage.SQLitePath = %q, want env override", cfg.Storage.SQLitePath)
	}
	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want env override", cfg.Alpaca.APIKey)
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want 7001 (env override)", cfg.Server.Port)
	}
}

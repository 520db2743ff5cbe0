package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"SENDERTERM_BACKEND",
	"SENDERTERM_STORE_URL",
	"SENDERTERM_TOKEN",
	"SENDERTERM_TIMEOUT",
	"SENDERTERM_RETRY_COUNT",
	"SENDERTERM_RETRY_DELAY",
	"SENDERTERM_DATA_DIR",
	"SENDERTERM_PASSPHRASE",
	"SENDERTERM_OWNER_EMAIL",
	"SENDERTERM_LOG_LEVEL",
	"SENDERTERM_LOG_FORMAT",
	"SENDERTERM_LOG_OUTPUT",
	"SENDERTERM_DEBUG",
}

// isolate points HOME at a fresh directory and clears every SENDERTERM_ variable.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Backend != BackendFile {
		t.Errorf("Expected default backend '%s', got '%s'", BackendFile, config.Backend)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", config.Timeout)
	}
	if config.RetryCount != 3 {
		t.Errorf("Expected default retry count 3, got %d", config.RetryCount)
	}
	if config.DataDir != filepath.Join(home, ".senderterm") {
		t.Errorf("Expected data dir under home, got '%s'", config.DataDir)
	}
	if config.Log.Level != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", config.Log.Level)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".senderterm", "config.yaml"), `
backend: remote
store_url: https://api.example.com/v1
token: from-file
timeout: 10s
retry_count: 5
log:
  level: warn
  format: json
`)
	t.Setenv("SENDERTERM_TOKEN", "from-env")
	t.Setenv("SENDERTERM_RETRY_DELAY", "500ms")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Backend != BackendRemote {
		t.Errorf("Expected backend from file, got '%s'", config.Backend)
	}
	if config.Token != "from-env" {
		t.Errorf("Expected env to override file token, got '%s'", config.Token)
	}
	if config.Timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s from file, got %v", config.Timeout)
	}
	if config.RetryCount != 5 {
		t.Errorf("Expected retry count 5 from file, got %d", config.RetryCount)
	}
	if config.RetryDelay != 500*time.Millisecond {
		t.Errorf("Expected retry delay 500ms from env, got %v", config.RetryDelay)
	}
	if config.Log.Format != "json" || config.Log.Level != "warn" {
		t.Errorf("Expected json/warn logging, got %s/%s", config.Log.Format, config.Log.Level)
	}
	if config.Log.Output != "stderr" {
		t.Errorf("Expected default log output to survive, got '%s'", config.Log.Output)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestLoadInvalidEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("SENDERTERM_TIMEOUT", "soon")
	t.Setenv("SENDERTERM_RETRY_COUNT", "many")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Expected unparsable timeout to fall back, got %v", config.Timeout)
	}
	if config.RetryCount != 3 {
		t.Errorf("Expected unparsable retry count to fall back, got %d", config.RetryCount)
	}
}

func TestDebugRaisesLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv("SENDERTERM_DEBUG", "1")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Log.Level != "debug" {
		t.Errorf("Expected debug level, got '%s'", config.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"remote without url", func(c *Config) { c.Backend = BackendRemote }, true},
		{"remote bad scheme", func(c *Config) { c.Backend = BackendRemote; c.StoreURL = "ftp://x" }, true},
		{"remote ok", func(c *Config) { c.Backend = BackendRemote; c.StoreURL = "http://localhost:8080" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "carrier-pigeon" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative retries", func(c *Config) { c.RetryCount = -1 }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"file without dir", func(c *Config) { c.DataDir = "" }, true},
	}

	for _, tt := range tests {
		config := GetDefaultConfig()
		tt.mutate(config)
		err := config.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestToRemoteConfig(t *testing.T) {
	config := GetDefaultConfig()
	config.StoreURL = "https://api.example.com"
	config.Token = "tok"

	rc := config.ToRemoteConfig()
	if rc.BaseURL != config.StoreURL || rc.Token != "tok" {
		t.Errorf("Expected url and token to carry over, got %+v", rc)
	}
	if rc.Timeout != config.Timeout || rc.RetryDelay != config.RetryDelay {
		t.Errorf("Expected timings to carry over, got %+v", rc)
	}

	config.RetryCount = 0
	if got := config.ToRemoteConfig().RetryCount; got != 1 {
		t.Errorf("Expected zero retries to mean one attempt, got %d", got)
	}
}

func TestToLoggingConfig(t *testing.T) {
	config := GetDefaultConfig()
	config.Log.Format = "JSON"

	lc := config.ToLoggingConfig()
	if lc.Format != "json" || lc.Level != "info" || lc.Output != "stderr" {
		t.Errorf("Unexpected logging config: %+v", lc)
	}
	if got := config.LogFilePath(); got != filepath.Join(config.DataDir, "senderterm.log") {
		t.Errorf("Unexpected log file path: %s", got)
	}
}

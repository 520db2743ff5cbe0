package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shipdesk/senderterm/internal/logging"
	"shipdesk/senderterm/internal/remote"
)

const (
	BackendRemote = "remote"
	BackendFile   = "file"

	appDir         = ".senderterm"
	configFileName = "config.yaml"
	logFileName    = "senderterm.log"
)

type Config struct {
	Backend    string        `yaml:"backend"`
	StoreURL   string        `yaml:"store_url"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
	RetryDelay time.Duration `yaml:"retry_delay"`

	DataDir    string `yaml:"data_dir"`
	Passphrase string `yaml:"passphrase"`
	OwnerEmail string `yaml:"owner_email"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

func GetDefaultConfig() *Config {
	dataDir := appDir
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, appDir)
	}

	return &Config{
		Backend:    BackendFile,
		Timeout:    30 * time.Second,
		RetryCount: 3,
		RetryDelay: 2 * time.Second,
		DataDir:    dataDir,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, appDir, configFileName)
}

// Load builds the configuration from defaults, then the YAML file at path, then
// SENDERTERM_* environment variables. An empty path means DefaultPath; a missing
// default file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	config := GetDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if err := config.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Backend = getEnvOrDefault("SENDERTERM_BACKEND", c.Backend)
	c.StoreURL = getEnvOrDefault("SENDERTERM_STORE_URL", c.StoreURL)
	c.Token = getEnvOrDefault("SENDERTERM_TOKEN", c.Token)
	c.Timeout = parseDurationOrDefault("SENDERTERM_TIMEOUT", c.Timeout)
	c.RetryCount = parseIntOrDefault("SENDERTERM_RETRY_COUNT", c.RetryCount)
	c.RetryDelay = parseDurationOrDefault("SENDERTERM_RETRY_DELAY", c.RetryDelay)
	c.DataDir = getEnvOrDefault("SENDERTERM_DATA_DIR", c.DataDir)
	c.Passphrase = getEnvOrDefault("SENDERTERM_PASSPHRASE", c.Passphrase)
	c.OwnerEmail = getEnvOrDefault("SENDERTERM_OWNER_EMAIL", c.OwnerEmail)
	c.Log.Level = getEnvOrDefault("SENDERTERM_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("SENDERTERM_LOG_FORMAT", c.Log.Format)
	c.Log.Output = getEnvOrDefault("SENDERTERM_LOG_OUTPUT", c.Log.Output)

	if IsDebugEnabled() {
		c.Log.Level = "debug"
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRemote:
		if c.StoreURL == "" {
			return fmt.Errorf("store url is required for the %s backend", BackendRemote)
		}
		u, err := url.Parse(c.StoreURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid store url: %s", c.StoreURL)
		}
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("data dir is required for the %s backend", BackendFile)
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be '%s' or '%s')", c.Backend, BackendRemote, BackendFile)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	if c.RetryCount < 0 {
		return fmt.Errorf("retry count must be non-negative, got: %d", c.RetryCount)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be non-negative, got: %v", c.RetryDelay)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'console')", c.Log.Format)
	}

	return nil
}

func (c *Config) ToRemoteConfig() remote.Config {
	retries := c.RetryCount
	if retries == 0 {
		// remote treats zero as "use the default"; a single attempt is what zero means here
		retries = 1
	}

	return remote.Config{
		BaseURL:    c.StoreURL,
		Token:      c.Token,
		Timeout:    c.Timeout,
		RetryCount: retries,
		RetryDelay: c.RetryDelay,
	}
}

func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		Format: strings.ToLower(c.Log.Format),
		Output: c.Log.Output,
	}
}

// LogFilePath is where the TUI sends its logs so they stay off the terminal.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.DataDir, logFileName)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func IsDebugEnabled() bool {
	return os.Getenv("SENDERTERM_DEBUG") == "true" || os.Getenv("SENDERTERM_DEBUG") == "1"
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all thg configuration.
type Config struct {
	// Backend API
	API APIConfig `yaml:"api"`

	// Local filesystem layout
	Paths PathsConfig `yaml:"paths"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the engagement-letter backend.
type APIConfig struct {
	BaseURL       string `yaml:"base_url"`
	Timeout       string `yaml:"timeout"`        // generic calls
	ParcelTimeout string `yaml:"parcel_timeout"` // /fetch_parcel_ui drives a browser bot upstream
	ReportTimeout string `yaml:"report_timeout"` // /generate_report renders a PDF
}

// PathsConfig configures where local state lives.
type PathsConfig struct {
	StateDir    string `yaml:"state_dir"`    // session record, logs
	DownloadDir string `yaml:"download_dir"` // generated letters
	HistoryDB   string `yaml:"history_db"`
}

// DefaultBaseURL is used when neither the config file nor the environment names a backend.
const DefaultBaseURL = "http://127.0.0.1:5000"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home := userHome()
	stateDir := filepath.Join(home, ".thg")

	return &Config{
		API: APIConfig{
			BaseURL:       DefaultBaseURL,
			Timeout:       "45s",
			ParcelTimeout: "60s",
			ReportTimeout: "120s",
		},
		Paths: PathsConfig{
			StateDir:    stateDir,
			DownloadDir: ".",
			HistoryDB:   filepath.Join(stateDir, "history.db"),
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// DefaultPath returns ~/.thg/config.yaml.
func DefaultPath() string {
	return filepath.Join(userHome(), ".thg", "config.yaml")
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

// Load loads configuration from a YAML file, then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// .env is optional; a missing file is the common case
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.API.BaseURL = NormalizeBaseURL(cfg.API.BaseURL)

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// REACT_APP_API_BASE is honoured so one .env serves both the web build and thg
	if base := os.Getenv("REACT_APP_API_BASE"); base != "" {
		c.API.BaseURL = base
	}
	if base := os.Getenv("THG_API_BASE"); base != "" {
		c.API.BaseURL = base
	}
	if dir := os.Getenv("THG_DOWNLOAD_DIR"); dir != "" {
		c.Paths.DownloadDir = dir
	}
	if dir := os.Getenv("THG_STATE_DIR"); dir != "" {
		c.Paths.StateDir = dir
		c.Paths.HistoryDB = filepath.Join(dir, "history.db")
	}
	if v := os.Getenv("THG_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// NormalizeBaseURL trims whitespace and a single trailing slash.
func NormalizeBaseURL(base string) string {
	return strings.TrimSuffix(strings.TrimSpace(base), "/")
}

// GetTimeout returns the generic request timeout.
func (c *Config) GetTimeout() time.Duration {
	return parseDuration(c.API.Timeout, 45*time.Second)
}

// GetParcelTimeout returns the parcel lookup timeout.
func (c *Config) GetParcelTimeout() time.Duration {
	return parseDuration(c.API.ParcelTimeout, 60*time.Second)
}

// GetReportTimeout returns the report generation timeout.
func (c *Config) GetReportTimeout() time.Duration {
	return parseDuration(c.API.ReportTimeout, 120*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api.base_url %q: scheme must be http or https", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: missing host", c.API.BaseURL)
	}
	if c.Paths.StateDir == "" {
		return fmt.Errorf("paths.state_dir is required")
	}
	return nil
}

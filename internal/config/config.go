// Package config loads askpdf configuration from ~/.askpdf/config.json with
// environment-variable overrides. A .env file in the working directory is
// honored so the service endpoint can be configured per project.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults. The typing interval matches the speed the original interface
// revealed answers at.
const (
	DefaultServerURL      = "http://127.0.0.1:5000"
	DefaultTypeIntervalMs = 8
	DefaultTimeoutSecs    = 120
	DefaultTheme          = "dark"
)

// UserConfig holds all askpdf settings from config.json. Zero values mean
// "use the default"; Normalize fills them in.
type UserConfig struct {
	// ServerURL is the base URL of the question-answering service.
	ServerURL string `json:"server_url,omitempty"`

	// Theme selects the TUI color scheme ("light" or "dark").
	Theme string `json:"theme,omitempty"`

	// TypeIntervalMs is the per-character reveal cadence in milliseconds.
	TypeIntervalMs int `json:"type_interval_ms,omitempty"`

	// TimeoutSecs bounds each service request.
	TimeoutSecs int `json:"timeout_secs,omitempty"`

	// ExportDir is where transcripts are written. Defaults to the working
	// directory.
	ExportDir string `json:"export_dir,omitempty"`

	// Debug enables the category file logs under the config directory.
	Debug bool `json:"debug,omitempty"`
}

// Dir returns the askpdf configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".askpdf"
	}
	return filepath.Join(home, ".askpdf")
}

// DefaultPath returns the location of config.json.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config.json if it exists, applies .env and environment
// overrides, and normalizes defaults. A missing file is not an error.
func Load() (*UserConfig, error) {
	_ = godotenv.Load()

	cfg := &UserConfig{}
	data, err := os.ReadFile(DefaultPath())
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", DefaultPath(), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory if needed.
func (c *UserConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Normalize fills zero values with defaults.
func (c *UserConfig) Normalize() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.TypeIntervalMs <= 0 {
		c.TypeIntervalMs = DefaultTypeIntervalMs
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
}

func (c *UserConfig) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("ASKPDF_SERVER")); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ASKPDF_THEME")); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("ASKPDF_EXPORT_DIR")); v != "" {
		c.ExportDir = v
	}
	n, err := parseOptionalIntEnv("ASKPDF_TYPE_INTERVAL_MS")
	if err != nil {
		return err
	}
	if n != nil {
		c.TypeIntervalMs = *n
	}
	n, err = parseOptionalIntEnv("ASKPDF_TIMEOUT_SECS")
	if err != nil {
		return err
	}
	if n != nil {
		c.TimeoutSecs = *n
	}
	if raw := strings.TrimSpace(os.Getenv("ASKPDF_DEBUG")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid ASKPDF_DEBUG value %q: %w", raw, err)
		}
		c.Debug = v
	}
	return nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &v, nil
}

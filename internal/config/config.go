package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Version is the logpipe release version reported in user-agent strings.
// Overridable at build time with -ldflags "-X ...config.Version=v1.2.3".
var Version = "0.1.0"

// Execution modes. Development surfaces every level on the console;
// production surfaces only warnings and errors.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Config is the pipeline configuration loaded from file/env.
type Config struct {
	Mode            string `json:"mode" yaml:"mode"`
	APIBaseURL      string `json:"apiBaseUrl" yaml:"apiBaseUrl"`
	DataDir         string `json:"dataDir" yaml:"dataDir"`
	HistoryMax      int    `json:"historyMax" yaml:"historyMax"`
	PersistMax      int    `json:"persistMax" yaml:"persistMax"`
	PendingMax      int    `json:"pendingMax" yaml:"pendingMax"`
	FlushThreshold  int    `json:"flushThreshold" yaml:"flushThreshold"`
	FlushIntervalMs int    `json:"flushIntervalMs" yaml:"flushIntervalMs"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Mode:            ModeProduction,
		APIBaseURL:      "http://localhost:8000",
		HistoryMax:      100,
		PersistMax:      500,
		PendingMax:      100,
		FlushThreshold:  10,
		FlushIntervalMs: 30_000,
	}
}

// Development reports whether the pipeline runs in development mode.
func (c Config) Development() bool {
	return c.Mode == ModeDevelopment
}

// FlushInterval returns the configured periodic flush period.
func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("config: invalid mode %q", c.Mode)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: apiBaseUrl is required")
	}
	return nil
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

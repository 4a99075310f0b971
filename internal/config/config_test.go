package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Mode != ModeProduction {
		t.Fatalf("default mode should be production, got %q", cfg.Mode)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected default base URL %q", cfg.APIBaseURL)
	}
	if cfg.HistoryMax != 100 || cfg.PersistMax != 500 || cfg.PendingMax != 100 || cfg.FlushThreshold != 10 {
		t.Fatalf("unexpected default capacities: %+v", cfg)
	}
	if cfg.FlushInterval() != 30*time.Second {
		t.Fatalf("unexpected default flush interval %v", cfg.FlushInterval())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logpipe.yaml")
	body := "mode: development\napiBaseUrl: http://collector:9000\nflushIntervalMs: 5000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Development() {
		t.Fatalf("want development mode")
	}
	if cfg.APIBaseURL != "http://collector:9000" {
		t.Fatalf("unexpected base URL %q", cfg.APIBaseURL)
	}
	if cfg.FlushInterval() != 5*time.Second {
		t.Fatalf("unexpected interval %v", cfg.FlushInterval())
	}
	// Unset fields keep defaults.
	if cfg.PersistMax != 500 {
		t.Fatalf("unset field should keep default, got %d", cfg.PersistMax)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logpipe.json")
	if err := os.WriteFile(path, []byte(`{"historyMax": 7}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryMax != 7 {
		t.Fatalf("want 7, got %d", cfg.HistoryMax)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n :"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("LOGPIPE_MODE", "development")
	t.Setenv("LOGPIPE_API_BASE_URL", "http://env:8000")
	t.Setenv("LOGPIPE_FLUSH_THRESHOLD", "25")
	t.Setenv("LOGPIPE_PENDING_MAX", "not-a-number")

	cfg := Default()
	FromEnv(&cfg)
	if cfg.Mode != ModeDevelopment || cfg.APIBaseURL != "http://env:8000" || cfg.FlushThreshold != 25 {
		t.Fatalf("env overlay not applied: %+v", cfg)
	}
	if cfg.PendingMax != 100 {
		t.Fatalf("invalid numeric env should be ignored, got %d", cfg.PendingMax)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := Default()
	cfg.Mode = "staging"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}

package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LOGPIPE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LOGPIPE_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("LOGPIPE_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("LOGPIPE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOGPIPE_HISTORY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HistoryMax = n
		}
	}
	if v := os.Getenv("LOGPIPE_PERSIST_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PersistMax = n
		}
	}
	if v := os.Getenv("LOGPIPE_PENDING_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PendingMax = n
		}
	}
	if v := os.Getenv("LOGPIPE_FLUSH_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FlushThreshold = n
		}
	}
	if v := os.Getenv("LOGPIPE_FLUSH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FlushIntervalMs = n
		}
	}
}

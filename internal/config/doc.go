// Package config provides loading and environment overlay for the log
// pipeline configuration. It exposes a Default() baseline, file loading from
// JSON or YAML, and a LOGPIPE_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("logpipe.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config

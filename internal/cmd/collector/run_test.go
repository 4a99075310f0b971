package collectorrun

import (
	"context"
	"testing"
	"time"

	cfgpkg "github.com/wayfarerhq/logpipe/internal/config"
	pebblestore "github.com/wayfarerhq/logpipe/internal/storage/pebble"
)

func TestOptionsDataDirFallback(t *testing.T) {
	opts := Options{DataDir: ""}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.DataDir == "" {
		t.Error("expected DataDir to be set after fallback")
	}

	opts = Options{DataDir: "/custom/data"}
	if opts.DataDir != "/custom/data" {
		t.Errorf("provided DataDir not preserved: %s", opts.DataDir)
	}
}

// TestRunIntegration verifies Run starts, serves, and shuts down on context
// cancellation without error.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	opts := Options{
		DataDir:       t.TempDir(),
		Addr:          "127.0.0.1:0",
		Fsync:         pebblestore.FsyncModeNever,
		FsyncInterval: time.Millisecond,
		Config:        cfgpkg.Default(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := Run(ctx, opts); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

package collectorrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wayfarerhq/logpipe/internal/collector"
	cfgpkg "github.com/wayfarerhq/logpipe/internal/config"
	"github.com/wayfarerhq/logpipe/internal/host"
	"github.com/wayfarerhq/logpipe/internal/metrics"
	"github.com/wayfarerhq/logpipe/internal/persist"
	pebblestore "github.com/wayfarerhq/logpipe/internal/storage/pebble"
	logpkg "github.com/wayfarerhq/logpipe/pkg/log"
)

// Options configure the local collector process.
type Options struct {
	DataDir       string
	Addr          string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Run starts the collector HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context. We layer
	// a local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}

	reg := prometheus.NewRegistry()
	pm := metrics.NewPipelineMetrics(reg)

	dispatcher := logpkg.NewDispatcher(opts.Config.Development(), true)
	logpkg.RedirectStdLog(dispatcher)

	storeDir := filepath.Join(opts.DataDir, "collector")
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       pm,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	store := persist.New(persist.Options{
		DB:      db,
		Caps:    host.Detect("logpipe-collector", cfgpkg.Version),
		Max:     opts.Config.PersistMax,
		Echo:    dispatcher.Echo,
		Metrics: pm,
	})

	srv := collector.NewServer(collector.ServerOptions{
		Store:      store,
		Registry:   reg,
		Dispatcher: dispatcher,
	})

	dispatcher.Dispatch(logpkg.NewEntry(logpkg.InfoLevel,
		fmt.Sprintf("collector listening on %s (data: %s)", opts.Addr, storeDir),
		nil, "collector", "start"))

	var wg sync.WaitGroup
	wg.Add(1)
	errCh := make(chan error, 1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(sctx, opts.Addr); err != nil && sctx.Err() == nil {
			errCh <- err
		}
	}()

	select {
	case <-sctx.Done():
	case err := <-errCh:
		srv.Close()
		wg.Wait()
		return err
	}
	srv.Close()
	wg.Wait()
	return nil
}

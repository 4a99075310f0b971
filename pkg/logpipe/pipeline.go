package logpipe

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wayfarerhq/logpipe/internal/collector"
	"github.com/wayfarerhq/logpipe/internal/config"
	"github.com/wayfarerhq/logpipe/internal/history"
	"github.com/wayfarerhq/logpipe/internal/host"
	"github.com/wayfarerhq/logpipe/internal/metrics"
	"github.com/wayfarerhq/logpipe/internal/persist"
	"github.com/wayfarerhq/logpipe/internal/sendqueue"
	pebblestore "github.com/wayfarerhq/logpipe/internal/storage/pebble"
	"github.com/wayfarerhq/logpipe/pkg/log"
)

// Options configure a Pipeline. The zero value of Caps disables every host
// facility; use host.Detect for a fully capable context.
type Options struct {
	// Config carries capacities, flush period, endpoint and mode. The zero
	// value selects config.Default().
	Config config.Config
	// Caps describes the host facilities available to this pipeline.
	Caps host.Capabilities
	// Registry receives the pipeline's Prometheus instruments. Nil disables
	// metrics (a second registration against one registry would fail).
	Registry prometheus.Registerer
	// Sender overrides the delivery client. Nil selects the HTTP collector
	// client built from Config.APIBaseURL.
	Sender sendqueue.Sender
	// DB overrides the durable store. Nil opens one under Config.DataDir
	// when storage is available.
	DB *pebblestore.DB
	// DispatcherOptions tune console routing (mainly for tests).
	DispatcherOptions []log.DispatcherOption
}

// Pipeline is the process-wide logging facility: level-gated console
// dispatch, bounded in-memory history, durable warn/error persistence, and
// batched delivery to a remote collector. The application wires exactly one
// instance at startup and passes it to consumers.
type Pipeline struct {
	cfg        config.Config
	caps       host.Capabilities
	sessionID  string
	dispatcher *log.Dispatcher
	history    *history.Store
	persist    *persist.Store
	queue      *sendqueue.Queue

	db     *pebblestore.DB
	ownsDB bool

	closeOnce sync.Once
}

// New wires a Pipeline. Construction never fails because of an unavailable
// host facility; affected components degrade to safe no-ops. Only an invalid
// configuration is an error.
func New(opts Options) (*Pipeline, error) {
	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	caps := opts.Caps
	dispatcher := log.NewDispatcher(cfg.Development(), caps.HasConsole, opts.DispatcherOptions...)

	var m *metrics.PipelineMetrics
	if opts.Registry != nil {
		m = metrics.NewPipelineMetrics(opts.Registry)
	}

	p := &Pipeline{
		cfg:        cfg,
		caps:       caps,
		sessionID:  uuid.NewString(),
		dispatcher: dispatcher,
	}

	p.db = opts.DB
	if p.db == nil && caps.HasStorage {
		dataDir := cfg.DataDir
		if dataDir == "" {
			dataDir = config.DefaultDataDir()
		}
		db, err := pebblestore.Open(pebblestore.Options{
			DataDir: filepath.Join(dataDir, "store"),
			Metrics: storageHook(m),
		})
		if err != nil {
			// The facility must never be the cause of an application crash;
			// run without durable storage.
			dispatcher.Echo("durable log storage unavailable", err)
		} else {
			p.db = db
			p.ownsDB = true
		}
	}

	p.persist = persist.New(persist.Options{
		DB:      p.db,
		Caps:    caps,
		Max:     cfg.PersistMax,
		Echo:    dispatcher.Echo,
		Metrics: m,
	})

	p.history = history.New(cfg.HistoryMax)
	p.history.Seed(p.persist.LoadAll(nil))

	sender := opts.Sender
	if sender == nil {
		sender = collector.NewClient(collector.ClientOptions{
			BaseURL:    cfg.APIBaseURL,
			SessionID:  p.sessionID,
			HasNetwork: caps.HasNetwork,
		})
	}
	p.queue = sendqueue.New(sendqueue.Options{
		Sender:    sender,
		Max:       cfg.PendingMax,
		Threshold: cfg.FlushThreshold,
		Interval:  cfg.FlushInterval(),
		HasTimer:  caps.HasTimer,
		Echo:      dispatcher.Echo,
		Metrics:   m,
	})

	return p, nil
}

// storageHook adapts nil metrics to the storage hook seam.
func storageHook(m *metrics.PipelineMetrics) pebblestore.MetricsHook {
	if m == nil {
		return nil
	}
	return m
}

// SessionID returns the per-process session identifier stamped on delivered
// batches.
func (p *Pipeline) SessionID() string { return p.sessionID }

// Debug captures a debug entry. Debug entries live only in the in-memory
// history and, in development mode, on the console.
func (p *Pipeline) Debug(message string, opts ...EntryOption) {
	p.capture(log.DebugLevel, message, opts...)
}

// Info captures an info entry.
func (p *Pipeline) Info(message string, opts ...EntryOption) {
	p.capture(log.InfoLevel, message, opts...)
}

// Warn captures a warning. Warnings are persisted and queued for delivery.
func (p *Pipeline) Warn(message string, opts ...EntryOption) {
	p.capture(log.WarnLevel, message, opts...)
}

// Error captures an error. Errors are persisted and queued for delivery.
func (p *Pipeline) Error(message string, opts ...EntryOption) {
	p.capture(log.ErrorLevel, message, opts...)
}

func (p *Pipeline) capture(level log.Level, message string, opts ...EntryOption) {
	var params entryParams
	for _, opt := range opts {
		opt(&params)
	}
	e := log.NewEntry(level, message, params.data, params.component, params.action)

	p.dispatcher.Dispatch(e)
	p.history.Append(e)
	if level == log.WarnLevel || level == log.ErrorLevel {
		p.persist.Persist(e)
		p.queue.Enqueue(e)
	}
}

// History returns recent entries, optionally filtered by exact level and
// truncated to the most recent limit-many.
func (p *Pipeline) History(level *log.Level, limit int) []log.Entry {
	return p.history.Query(level, limit)
}

// ClearHistory empties the in-memory history.
func (p *Pipeline) ClearHistory() { p.history.Clear() }

// ExportHistoryText renders the in-memory history, one formatted line per
// entry.
func (p *Pipeline) ExportHistoryText() string { return p.history.ExportText() }

// Persisted returns the durable warn/error buffer, optionally filtered.
func (p *Pipeline) Persisted(level *log.Level) []log.Entry {
	return p.persist.LoadAll(level)
}

// ClearPersisted empties the durable buffer.
func (p *Pipeline) ClearPersisted() { p.persist.Clear() }

// ExportPersistedText serializes the filtered durable buffer as
// pretty-printed JSON.
func (p *Pipeline) ExportPersistedText(level *log.Level) string {
	return p.persist.ExportText(level)
}

// ExportPersistedToFile writes the filtered durable buffer to a dated JSON
// file under dir and returns the written path. No-op without storage.
func (p *Pipeline) ExportPersistedToFile(dir string, level *log.Level) (string, error) {
	return p.persist.ExportToFile(dir, level)
}

// SendNow forces an immediate flush of the pending queue and reports whether
// it is empty afterward.
func (p *Pipeline) SendNow(ctx context.Context) bool {
	return p.queue.SendNow(ctx)
}

// PendingCount returns the number of entries awaiting delivery.
func (p *Pipeline) PendingCount() int { return p.queue.Len() }

// Close performs the teardown sequence: stop the periodic flusher, attempt
// one final best-effort flush, and release the durable store. Safe to call
// more than once.
func (p *Pipeline) Close(ctx context.Context) error {
	var err error
	p.closeOnce.Do(func() {
		p.queue.Close(ctx)
		if p.ownsDB {
			err = p.db.Close()
		}
	})
	return err
}

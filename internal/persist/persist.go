// Package persist implements the bounded durable buffer of warn/error
// entries that survives process restarts.
//
// The whole buffer lives under one fixed storage key as a JSON array of
// entries. Every persist is a read-modify-write of that key: load the stored
// list (empty when absent or corrupt), enrich the entry with ambient
// environment context, append, truncate to the most recent capacity-many,
// write back. Storage failures are echoed to the console and swallowed; they
// never reach the logging call site.
package persist

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wayfarerhq/logpipe/internal/host"
	"github.com/wayfarerhq/logpipe/internal/metrics"
	pebblestore "github.com/wayfarerhq/logpipe/internal/storage/pebble"
	"github.com/wayfarerhq/logpipe/pkg/log"
)

// DefaultMax is the default durable buffer capacity.
const DefaultMax = 500

// storageKey is the single fixed key holding the serialized buffer.
var storageKey = []byte("logpipe/frontend-logs")

// Echo reports a swallowed storage failure to the console.
type Echo func(msg string, err error)

// Options configure a Store.
type Options struct {
	// DB is the open durable store. Nil makes every operation a safe no-op
	// returning empty results.
	DB   *pebblestore.DB
	Caps host.Capabilities
	// Max is the buffer capacity; <= 0 selects DefaultMax.
	Max int
	// Echo receives secondary warnings for swallowed failures. Optional.
	Echo Echo
	// Metrics counts persisted entries and swallowed failures. Optional.
	Metrics *metrics.PipelineMetrics
}

// Store is the durable warn/error buffer.
type Store struct {
	mu      sync.Mutex
	db      *pebblestore.DB
	caps    host.Capabilities
	max     int
	echo    Echo
	metrics *metrics.PipelineMetrics
}

// New builds a Store. The store honors the HasStorage capability: with no
// storage every operation no-ops.
func New(opts Options) *Store {
	max := opts.Max
	if max <= 0 {
		max = DefaultMax
	}
	db := opts.DB
	if !opts.Caps.HasStorage {
		db = nil
	}
	echo := opts.Echo
	if echo == nil {
		echo = func(string, error) {}
	}
	return &Store{db: db, caps: opts.Caps, max: max, echo: echo, metrics: opts.Metrics}
}

// Available reports whether a durable buffer is open.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

// stackTracer is implemented by errors carrying a captured stack trace.
type stackTracer interface {
	StackTrace() string
}

// Persist enriches the entry with ambient environment context and appends it
// to the durable buffer, dropping the oldest entries past capacity. Failures
// are echoed and swallowed.
func (s *Store) Persist(e log.Entry) {
	if !s.Available() {
		return
	}

	// Enrichment already carried by the entry (e.g. batches relayed through
	// the collector) is preserved.
	if e.UserAgent == "" {
		e.UserAgent = s.caps.ResolveUserAgent()
	}
	if e.URL == "" {
		e.URL = s.caps.ResolvePageURL()
	}
	if err, ok := e.Data.(error); ok && err != nil {
		if st, ok := err.(stackTracer); ok {
			e.Stack = st.StackTrace()
		} else {
			e.Stack = err.Error()
		}
		// Errors do not survive a JSON round-trip; store the message.
		e.Data = err.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()
	entries = append(entries, e)
	if len(entries) > s.max {
		entries = entries[len(entries)-s.max:]
	}

	buf, err := json.Marshal(entries)
	if err != nil {
		s.metrics.ObservePersist(err)
		s.echo("failed to serialize persisted logs", err)
		return
	}
	if err := s.db.Set(context.Background(), storageKey, buf); err != nil {
		s.metrics.ObservePersist(err)
		s.echo("failed to write persisted logs", err)
		return
	}
	s.metrics.ObservePersist(nil)
}

// LoadAll returns the stored entries, optionally filtered by exact level.
// Returns an empty slice when storage is absent or the stored value is
// corrupt.
func (s *Store) LoadAll(level *log.Level) []log.Entry {
	if !s.Available() {
		return nil
	}
	s.mu.Lock()
	entries := s.loadLocked()
	s.mu.Unlock()

	if level == nil {
		return entries
	}
	filtered := entries[:0]
	for _, e := range entries {
		if e.Level == *level {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Clear empties the durable buffer.
func (s *Store) Clear() {
	if !s.Available() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete(context.Background(), storageKey); err != nil {
		s.echo("failed to clear persisted logs", err)
	}
}

// ExportText serializes the filtered stored entries as pretty-printed JSON.
func (s *Store) ExportText(level *log.Level) string {
	entries := s.LoadAll(level)
	if entries == nil {
		entries = []log.Entry{}
	}
	buf, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		s.echo("failed to serialize export", err)
		return "[]"
	}
	return string(buf)
}

// ExportFileName returns the export file name for the given day.
func ExportFileName(now time.Time) string {
	return "frontend-logs-" + now.UTC().Format("2006-01-02") + ".json"
}

// ExportToFile writes the filtered stored entries, pretty-printed, to
// frontend-logs-<YYYY-MM-DD>.json under dir and returns the written path.
// With no storage available this is a no-op returning "".
func (s *Store) ExportToFile(dir string, level *log.Level) (string, error) {
	if !s.Available() {
		return "", nil
	}
	path := filepath.Join(dir, ExportFileName(time.Now()))
	if err := os.WriteFile(path, []byte(s.ExportText(level)), 0o644); err != nil {
		s.echo("failed to write export file", err)
		return "", err
	}
	return path, nil
}

// loadLocked reads and decodes the stored buffer. Absent and corrupt values
// both load as empty; corruption is echoed once per occurrence.
func (s *Store) loadLocked() []log.Entry {
	raw, err := s.db.Get(storageKey)
	if err != nil {
		if !pebblestore.IsNotFound(err) {
			s.echo("failed to read persisted logs", err)
		}
		return nil
	}
	var entries []log.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.echo("discarding corrupt persisted logs", err)
		return nil
	}
	return entries
}

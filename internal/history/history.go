// Package history implements the bounded in-memory buffer of recent log
// entries of any level, used for in-session inspection and export.
package history

import (
	"strings"
	"sync"

	"github.com/wayfarerhq/logpipe/pkg/log"
)

// DefaultMax is the default history capacity.
const DefaultMax = 100

// Store is a bounded FIFO buffer of recent entries. Eviction drops the
// oldest entries once capacity is exceeded. Operates purely on process
// memory; no failure modes.
type Store struct {
	mu      sync.Mutex
	entries []log.Entry
	max     int
}

// New builds a Store with the given capacity. max <= 0 selects DefaultMax.
func New(max int) *Store {
	if max <= 0 {
		max = DefaultMax
	}
	return &Store{max: max}
}

// Seed replaces the buffer with the given entries, keeping only the most
// recent capacity-many. Used once at startup to rehydrate from the durable
// buffer.
func (s *Store) Seed(entries []log.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(entries) > s.max {
		entries = entries[len(entries)-s.max:]
	}
	s.entries = append(s.entries[:0], entries...)
}

// Append pushes an entry to the tail, evicting from the head past capacity.
func (s *Store) Append(e log.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.max {
		s.entries = append(s.entries[:0], s.entries[len(s.entries)-s.max:]...)
	}
}

// Query returns entries matching the optional exact level filter, truncated
// to the most recent limit-many (limit <= 0 returns all matches).
// Chronological order is preserved within the returned slice.
func (s *Store) Query(level *log.Level, limit int) []log.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]log.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if level != nil && e.Level != *level {
			continue
		}
		filtered = append(filtered, e)
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}

// Len returns the current number of buffered entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear empties the buffer.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// ExportText renders the buffered entries, one formatted line each.
func (s *Store) ExportText() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(log.FormatEntry(e))
		b.WriteByte('\n')
	}
	return b.String()
}

package logpipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/logpipe/internal/config"
	"github.com/wayfarerhq/logpipe/internal/host"
	"github.com/wayfarerhq/logpipe/internal/sendqueue"
	pebblestore "github.com/wayfarerhq/logpipe/internal/storage/pebble"
	"github.com/wayfarerhq/logpipe/pkg/log"
)

type countingSender struct {
	mu      sync.Mutex
	batches [][]log.Entry
	err     error
}

func (s *countingSender) Send(_ context.Context, batch []log.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]log.Entry(nil), batch...))
	return s.err
}

func (s *countingSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func testDB(t *testing.T) *pebblestore.DB {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fullCaps() host.Capabilities {
	c := host.Detect("logpipe-test", "0.0.0")
	c.HasTimer = false // tests drive flushes explicitly
	return c
}

func newTestPipeline(t *testing.T, sender sendqueue.Sender) *Pipeline {
	t.Helper()
	p, err := New(Options{
		Caps:   fullCaps(),
		DB:     testDB(t),
		Sender: sender,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestWarnAndErrorFlowToEveryStage(t *testing.T) {
	sender := &countingSender{}
	p := newTestPipeline(t, sender)

	p.Warn("rate limited", WithComponent("api"), WithAction("fetch"))
	p.Error("request failed", WithData(errors.New("boom")))

	require.Len(t, p.History(nil, 0), 2)
	require.Len(t, p.Persisted(nil), 2)
	require.Equal(t, 2, p.PendingCount())

	persisted := p.Persisted(nil)
	require.NotEmpty(t, persisted[0].UserAgent)
	require.NotEmpty(t, persisted[0].URL)
	require.Equal(t, "boom", persisted[1].Stack)
}

func TestDebugAndInfoStayTransient(t *testing.T) {
	sender := &countingSender{}
	p := newTestPipeline(t, sender)

	p.Debug("probing cache")
	p.Info("cache warm")

	require.Len(t, p.History(nil, 0), 2)
	require.Empty(t, p.Persisted(nil))
	require.Equal(t, 0, p.PendingCount())
}

func TestHistoryRehydratesFromDurableBuffer(t *testing.T) {
	db := testDB(t)
	caps := fullCaps()

	p1, err := New(Options{Caps: caps, DB: db, Sender: &countingSender{}})
	require.NoError(t, err)
	p1.Warn("survives restart")
	require.NoError(t, p1.Close(context.Background()))

	p2, err := New(Options{Caps: caps, DB: db, Sender: &countingSender{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p2.Close(context.Background()) })

	h := p2.History(nil, 0)
	require.Len(t, h, 1)
	require.Equal(t, "survives restart", h[0].Message)
	// Pending sends are not restored across restarts.
	require.Equal(t, 0, p2.PendingCount())
}

func TestThresholdFlushThroughPipeline(t *testing.T) {
	sender := &countingSender{}
	cfg := config.Default()
	cfg.FlushThreshold = 5
	p, err := New(Options{Config: cfg, Caps: fullCaps(), DB: testDB(t), Sender: sender})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	for i := 0; i < 5; i++ {
		p.Warn(fmt.Sprintf("w%d", i))
	}
	require.Eventually(t, func() bool { return sender.calls() == 1 && p.PendingCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestSendNowReportsRequeuedBatches(t *testing.T) {
	sender := &countingSender{err: errors.New("collector down")}
	p := newTestPipeline(t, sender)

	p.Error("undeliverable")
	require.False(t, p.SendNow(context.Background()))
	require.Equal(t, 1, p.PendingCount())

	sender.err = nil
	require.True(t, p.SendNow(context.Background()))
	require.Equal(t, 0, p.PendingCount())
}

func TestCloseFlushesPending(t *testing.T) {
	sender := &countingSender{}
	p, err := New(Options{Caps: fullCaps(), DB: testDB(t), Sender: sender})
	require.NoError(t, err)

	p.Warn("about to exit")
	require.NoError(t, p.Close(context.Background()))
	require.Equal(t, 1, sender.calls())

	// Close is idempotent and nothing flushes afterward.
	require.NoError(t, p.Close(context.Background()))
	require.Equal(t, 1, sender.calls())
}

func TestBareContextDegradesToNoOps(t *testing.T) {
	p, err := New(Options{Caps: host.None()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	require.NotPanics(t, func() {
		p.Error("nobody is listening", WithData(errors.New("x")))
		p.ClearPersisted()
		_, _ = p.ExportPersistedToFile(t.TempDir(), nil)
	})
	// History still works; it operates purely on process memory.
	require.Len(t, p.History(nil, 0), 1)
	require.Empty(t, p.Persisted(nil))
}

func TestConsoleGatingByMode(t *testing.T) {
	run := func(mode string) (stdout, stderr string) {
		var out, errw bytes.Buffer
		cfg := config.Default()
		cfg.Mode = mode
		caps := fullCaps()
		p, err := New(Options{
			Config:            cfg,
			Caps:              caps,
			DB:                testDB(t),
			Sender:            &countingSender{},
			DispatcherOptions: []log.DispatcherOption{log.WithWriters(&out, &errw)},
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = p.Close(context.Background()) })

		p.Debug("dbg")
		p.Info("inf")
		p.Warn("wrn")
		p.Error("err")
		return out.String(), errw.String()
	}

	stdout, stderr := run(config.ModeDevelopment)
	require.Contains(t, stdout, "dbg")
	require.Contains(t, stdout, "inf")
	require.Contains(t, stderr, "wrn")
	require.Contains(t, stderr, "err")

	stdout, stderr = run(config.ModeProduction)
	require.NotContains(t, stdout, "dbg")
	require.NotContains(t, stdout, "inf")
	require.Contains(t, stderr, "wrn")
	require.Contains(t, stderr, "err")
}

func TestEndToEndAgainstHTTPCollector(t *testing.T) {
	var mu sync.Mutex
	var received int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL
	p, err := New(Options{Config: cfg, Caps: fullCaps(), DB: testDB(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	p.Warn("over the wire")
	require.True(t, p.SendNow(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, received)
}

func TestConvenienceWrappersShapeEntries(t *testing.T) {
	p := newTestPipeline(t, &countingSender{})

	p.APIRequest("GET", "/v1/routes")
	p.APIResponse("GET", "/v1/routes", 200, 42*time.Millisecond)
	p.APIResponse("GET", "/v1/routes", 503, 10*time.Millisecond)
	p.APIError("POST", "/v1/routes", errors.New("timeout"))
	p.ComponentMounted("RouteMap")
	p.BusinessOperation("route-completed", map[string]any{"xp": 120})
	p.Performance("render", 16.7, "ms")
	p.UserAction("shared-route", nil)

	h := p.History(nil, 0)
	require.Len(t, h, 8)

	warnLvl := log.WarnLevel
	warns := p.History(&warnLvl, 0)
	require.Len(t, warns, 1)
	require.True(t, strings.Contains(warns[0].Message, "503"))

	errLvl := log.ErrorLevel
	errs := p.History(&errLvl, 0)
	require.Len(t, errs, 1)
	require.Equal(t, "api", errs[0].Component)

	// Only the warn and the error reached the durable buffer and the queue.
	require.Len(t, p.Persisted(nil), 2)
	require.Equal(t, 2, p.PendingCount())
}

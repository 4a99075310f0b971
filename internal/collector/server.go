package collector

import (
	"context"
	"net"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfarerhq/logpipe/internal/persist"
	"github.com/wayfarerhq/logpipe/pkg/log"
)

// ServerOptions configure the development collector.
type ServerOptions struct {
	// Store receives every ingested entry.
	Store *persist.Store
	// Registry backs the /metrics endpoint. Nil selects the default gatherer.
	Registry *prometheus.Registry
	// Dispatcher echoes ingest activity to the console. Optional.
	Dispatcher *log.Dispatcher
}

// Server is a minimal local collector: it accepts frontend log batches,
// persists them into a durable buffer, and exposes health and metrics
// endpoints. It exercises the wire contract in development; it is not a
// production collector.
type Server struct {
	store      *persist.Store
	dispatcher *log.Dispatcher
	srv        *http.Server
	lis        net.Listener
}

// NewServer builds a Server.
func NewServer(opts ServerOptions) *Server {
	mux := http.NewServeMux()
	s := &Server{store: opts.Store, dispatcher: opts.Dispatcher, srv: &http.Server{Handler: mux}}
	mux.HandleFunc(IngestPath, s.handleIngest)
	mux.HandleFunc("/healthz", s.handleHealth)
	if opts.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return s
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// Handler exposes the server's mux for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}
	var env Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed batch: " + err.Error()})
		return
	}
	if len(env.Logs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty batch"})
		return
	}

	for _, e := range env.Logs {
		s.store.Persist(e)
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(log.NewEntry(log.InfoLevel, "ingested batch", map[string]any{
			"received": len(env.Logs),
			"session":  env.SessionID,
		}, "collector", "ingest"))
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "received": len(env.Logs)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

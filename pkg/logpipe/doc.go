// Package logpipe is the client-side structured logging pipeline: leveled
// capture, level-and-mode gated console dispatch, a bounded in-memory history
// of recent entries, a bounded durable buffer of warnings and errors, and
// asynchronous batched delivery to a remote collector with re-queue on
// failure and a best-effort flush at teardown.
//
// Quick start
//
//	cfg := config.Default()
//	config.FromEnv(&cfg)
//	p, err := logpipe.New(logpipe.Options{
//	    Config: cfg,
//	    Caps:   host.Detect("myapp", version),
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Close(context.Background())
//
//	p.Info("started", logpipe.WithComponent("app"))
//	p.APIError("GET", "/v1/routes", err)
//
// Debug and info entries live only in the in-memory history (and, in
// development mode, on the console). Warnings and errors are additionally
// persisted across restarts and queued for delivery. The pipeline never
// surfaces its own failures to the logging call site.
package logpipe

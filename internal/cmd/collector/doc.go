// Package collectorrun exposes a shared Run entrypoint used by the CLI to
// start the local log collector, handling lifecycle and shutdown.
//
// Example:
//
//	opts := collectorrun.Options{DataDir: "./data", Addr: ":8000", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = collectorrun.Run(ctx, opts)
package collectorrun

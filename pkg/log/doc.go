// Package log defines the entry model shared by every pipeline component and
// the console side of the pipeline: severity levels, the Entry type, the
// single-line text formatter, and the level-gated console Dispatcher.
//
// Quick start
//
//	d := log.NewDispatcher(true, true)
//	e := log.NewEntry(log.WarnLevel, "slow response", nil, "api", "fetch")
//	d.Dispatch(e) // ⚠️ 2025-01-02T03:04:05.000Z [api] [fetch] slow response
//
// # Interop
//
// To route standard library log output (used by Pebble and other
// dependencies) through a dispatcher, use RedirectStdLog.
package log

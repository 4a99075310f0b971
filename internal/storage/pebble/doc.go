// Package pebblestore wraps a Pebble database with the fsync policy and the
// narrow key-value surface used by the durable log buffer: Get, Set, Delete
// of whole values under fixed keys. A MetricsHook seam allows observing
// read/write latencies without coupling storage to a metrics backend.
package pebblestore

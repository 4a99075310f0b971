// Package logscmd provides the `logpipe logs` command group.
//
// The commands operate directly on the durable warn/error buffer stored on
// disk, intended for developers inspecting what a client would ship on its
// next flush.
//
// Usage
//
//	logpipe logs tail --limit 10
//	logpipe logs tail --level error
//
//	logpipe logs export                      # print JSON to stdout
//	logpipe logs export --out ./exports      # write frontend-logs-<date>.json
//
//	logpipe logs clear --confirm
//
//	# Inspect the collector-side buffer instead of the client buffer
//	logpipe logs tail --store collector --data-dir ./data
//
// Notes
//
//   - The buffer is a single Pebble database; commands take an exclusive
//     lock, so stop any running pipeline or collector using the same
//     --data-dir first.
package logscmd

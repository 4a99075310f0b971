package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
)

// Dispatcher decides, per entry, whether and where a formatted line is
// written. The development flag is fixed at construction and never changes.
//
// Routing rules:
//   - development: every level is written, debug/info to the out channel and
//     warn/error to the err channel. Debug only ever reaches a console in
//     development mode.
//   - non-development: only warn and error are written; debug and info are
//     suppressed at the routing level.
//
// Writes are fire-and-forget and never fail; with no console available every
// write is skipped.
type Dispatcher struct {
	development bool
	hasConsole  bool
	out         io.Writer
	err         io.Writer
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithWriters overrides the out (debug/info) and err (warn/error) channels.
func WithWriters(out, err io.Writer) DispatcherOption {
	return func(d *Dispatcher) {
		d.out = out
		d.err = err
	}
}

// NewDispatcher builds a Dispatcher. hasConsole=false turns every write into
// a no-op.
func NewDispatcher(development, hasConsole bool, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		development: development,
		hasConsole:  hasConsole,
		out:         os.Stdout,
		err:         os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch conditionally writes the formatted entry to the console.
func (d *Dispatcher) Dispatch(e Entry) {
	if d == nil || !d.hasConsole {
		return
	}
	switch e.Level {
	case DebugLevel, InfoLevel:
		if !d.development {
			return
		}
		d.write(d.out, FormatEntry(e))
	case WarnLevel, ErrorLevel:
		d.write(d.err, FormatEntry(e))
	}
}

// Echo writes a secondary warning about a failure inside the logging system
// itself. It bypasses level gating (failures of the facility should be
// visible in any mode that has a console) and must never feed back into a
// pipeline.
func (d *Dispatcher) Echo(msg string, err error) {
	if d == nil || !d.hasConsole {
		return
	}
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	d.write(d.err, WarnLevel.Glyph()+" "+Now()+" [logpipe] "+msg)
}

func (d *Dispatcher) write(w io.Writer, line string) {
	if w == nil {
		return
	}
	// Console writes must never raise.
	_, _ = fmt.Fprintln(w, line)
}

// RedirectStdLog routes standard library log output (used by Pebble and
// other dependencies) through the dispatcher as info entries.
func RedirectStdLog(d *Dispatcher) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogWriter{d: d})
}

type stdLogWriter struct{ d *Dispatcher }

func (w stdLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	w.d.Dispatch(NewEntry(InfoLevel, msg, nil, "stdlog", ""))
	return len(p), nil
}

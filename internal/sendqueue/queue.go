// Package sendqueue implements the bounded pending-entries queue and its
// flush protocol: periodic, threshold-triggered, explicit, and teardown
// flushes, with re-queue-on-failure and a drop-oldest-beyond-cap overflow
// policy.
package sendqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wayfarerhq/logpipe/internal/metrics"
	"github.com/wayfarerhq/logpipe/pkg/log"
)

// Defaults for the flush protocol.
const (
	DefaultMax       = 100
	DefaultThreshold = 10
	DefaultInterval  = 30 * time.Second
)

// Sender delivers one batch to the remote collector. Any non-nil error is a
// delivery failure; the batch is folded back into the queue.
type Sender interface {
	Send(ctx context.Context, batch []log.Entry) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, batch []log.Entry) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, batch []log.Entry) error { return f(ctx, batch) }

// Options configure a Queue.
type Options struct {
	Sender Sender
	// Max caps the pending queue; <= 0 selects DefaultMax.
	Max int
	// Threshold triggers an immediate flush once pending reaches it;
	// <= 0 selects DefaultThreshold.
	Threshold int
	// Interval is the periodic flush period; <= 0 selects DefaultInterval.
	Interval time.Duration
	// HasTimer starts the periodic flusher. Without it no periodic flushing
	// is attempted; size-triggered, explicit and teardown flushes still run.
	HasTimer bool
	// Echo receives secondary warnings for swallowed delivery failures.
	Echo func(msg string, err error)
	// Metrics observes flush outcomes and queue depth. Optional.
	Metrics *metrics.PipelineMetrics
}

// Queue is the bounded pending-entries queue. Each flush takes ownership of
// the current pending list in one critical section before the network call,
// so entries enqueued during an in-flight flush land in a fresh queue and
// can never be included in or corrupt the in-flight batch.
type Queue struct {
	mu             sync.Mutex
	pending        []log.Entry
	closed         bool
	flushScheduled bool

	sender    Sender
	max       int
	threshold int
	echo      func(msg string, err error)
	metrics   *metrics.PipelineMetrics

	ticker  *time.Ticker
	done    chan struct{}
	loopWG  sync.WaitGroup
	flushWG sync.WaitGroup
}

// New builds a Queue and, when the host provides a timer, starts the
// periodic flusher.
func New(opts Options) *Queue {
	q := &Queue{
		sender:    opts.Sender,
		max:       opts.Max,
		threshold: opts.Threshold,
		echo:      opts.Echo,
		metrics:   opts.Metrics,
		done:      make(chan struct{}),
	}
	if q.max <= 0 {
		q.max = DefaultMax
	}
	if q.threshold <= 0 {
		q.threshold = DefaultThreshold
	}
	if q.echo == nil {
		q.echo = func(string, error) {}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if opts.HasTimer {
		q.ticker = time.NewTicker(interval)
		q.loopWG.Add(1)
		go q.runLoop()
	}
	return q
}

func (q *Queue) runLoop() {
	defer q.loopWG.Done()
	for {
		select {
		case <-q.ticker.C:
			q.flush(context.Background())
		case <-q.done:
			return
		}
	}
}

// Enqueue appends an entry. Reaching the size threshold triggers an
// immediate asynchronous flush, independent of the timer. At most one
// threshold flush is in flight at a time.
func (q *Queue) Enqueue(e log.Entry) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.metrics.SetPendingDepth(len(q.pending))
	trigger := len(q.pending) >= q.threshold && !q.flushScheduled && !q.closed
	if trigger {
		q.flushScheduled = true
		q.flushWG.Add(1)
	}
	q.mu.Unlock()

	if trigger {
		go func() {
			defer q.flushWG.Done()
			q.flush(context.Background())
		}()
	}
}

// SendNow forces an immediate flush and reports whether the queue is empty
// afterward: true means fully drained, false means at least one batch failed
// and was re-queued. After Close it only reports the current state.
func (q *Queue) SendNow(ctx context.Context) bool {
	q.mu.Lock()
	if q.closed {
		drained := len(q.pending) == 0
		q.mu.Unlock()
		return drained
	}
	q.mu.Unlock()
	return q.flush(ctx)
}

// Len returns the current pending-queue length.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pending returns a snapshot of the pending queue in order.
func (q *Queue) Pending() []log.Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]log.Entry(nil), q.pending...)
}

// Close stops the periodic flusher, waits for in-flight flushes, and
// performs one final best-effort flush. No flush is attempted after Close
// returns; delivery of the final batch is not guaranteed.
func (q *Queue) Close(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	if q.ticker != nil {
		q.ticker.Stop()
	}
	close(q.done)
	q.loopWG.Wait()
	q.flushWG.Wait()
	q.flush(ctx)
}

// flush snapshots and clears the pending queue in one critical section, then
// attempts delivery. On failure the batch is prepended back ahead of
// whatever was enqueued during the attempt and the combined list is
// truncated to the cap, dropping from the tail. Never panics; reports
// whether the queue is empty afterward.
func (q *Queue) flush(ctx context.Context) bool {
	q.mu.Lock()
	q.flushScheduled = false
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return true
	}
	batch := q.pending
	q.pending = nil
	q.metrics.SetPendingDepth(0)
	q.mu.Unlock()

	err := q.send(ctx, batch)
	if err == nil {
		q.metrics.ObserveFlush(true, len(batch))
		q.mu.Lock()
		drained := len(q.pending) == 0
		q.mu.Unlock()
		return drained
	}

	q.metrics.ObserveFlush(false, len(batch))
	q.mu.Lock()
	combined := make([]log.Entry, 0, len(batch)+len(q.pending))
	combined = append(combined, batch...)
	combined = append(combined, q.pending...)
	dropped := 0
	if len(combined) > q.max {
		dropped = len(combined) - q.max
		combined = combined[:q.max]
	}
	q.pending = combined
	q.metrics.ObserveRequeue(len(combined), dropped)
	q.metrics.SetPendingDepth(len(combined))
	q.mu.Unlock()

	q.echo("failed to deliver log batch, re-queued", err)
	return false
}

// send guards the Sender call so a flush can never raise.
func (q *Queue) send(ctx context.Context, batch []log.Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()
	if q.sender == nil {
		return fmt.Errorf("no sender configured")
	}
	return q.sender.Send(ctx, batch)
}

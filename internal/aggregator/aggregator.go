// Package aggregator implements Input Aggregator: one bounded,
// multi-producer channel fed by every Device Source, a broadcast shutdown
// signal, and a drop counter for observability under backpressure.
package aggregator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/keyviz/internal/device"
	"github.com/bnema/keyviz/internal/logger"
)

const (
	// DefaultCapacity is the minimum channel capacity this package accepts.
	DefaultCapacity = 1024

	minBackoff       = time.Millisecond
	maxBackoff       = 10 * time.Millisecond
	perSourceTimeout = time.Second
)

type sourceHandle struct {
	id   string
	done chan struct{}
}

// Aggregator owns the receive endpoint consumed by the Frame Scheduler and
// the broadcast shutdown signal observed by every spawned Source.
type Aggregator struct {
	ch chan device.RawKeyEvent

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	handles  []*sourceHandle
	closed   bool
	dropped  atomic.Uint64
}

// New creates an Aggregator with a bounded channel of at least
// DefaultCapacity. It retains its own cancel func as the sole owner of the
// channel's lifetime, so the receive endpoint stays open even while no
// Source is currently producing — closing it is Shutdown's job alone.
func New(capacity int) *Aggregator {
	if capacity < DefaultCapacity {
		capacity = DefaultCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Aggregator{
		ch:     make(chan device.RawKeyEvent, capacity),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Spawn starts a Source's read loop on its own goroutine, tracked so
// Shutdown can wait for it (with a per-source timeout) before returning.
func (a *Aggregator) Spawn(src *device.Source) {
	h := &sourceHandle{id: src.ID(), done: make(chan struct{})}

	a.mu.Lock()
	a.handles = append(a.handles, h)
	a.mu.Unlock()

	go func() {
		defer close(h.done)
		src.Run(a.ctx, a)
	}()
}

// Send implements device.Sink. A full channel gets a short yield-and-retry
// window; if it is still full afterwards, the oldest pending event on this
// producer's side is dropped (by discarding the event currently being
// sent) rather than blocking the device's read loop indefinitely.
func (a *Aggregator) Send(ctx context.Context, ev device.RawKeyEvent) {
	select {
	case a.ch <- ev:
		return
	default:
	}

	backoff := minBackoff
	deadline := time.Now().Add(maxBackoff)
	for time.Now().Before(deadline) {
		select {
		case a.ch <- ev:
			return
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}

	a.dropped.Add(1)
	logger.Warnf("aggregator channel full, dropping event from %s (total dropped: %d)", ev.DeviceID, a.dropped.Load())
}

// Events is the single bounded receive endpoint the scheduler polls.
func (a *Aggregator) Events() <-chan device.RawKeyEvent { return a.ch }

// DropCount reports how many events have been dropped under backpressure
// since startup.
func (a *Aggregator) DropCount() uint64 { return a.dropped.Load() }

// Shutdown signals every spawned Source via the broadcast context, waits up
// to one second per source for its read loop to return, then closes the
// channel — turning the next Events() receive into the "None" case.
func (a *Aggregator) Shutdown() {
	a.cancel()

	a.mu.Lock()
	handles := a.handles
	a.mu.Unlock()

	for _, h := range handles {
		select {
		case <-h.done:
		case <-time.After(perSourceTimeout):
			logger.Warnf("device source %s did not stop within timeout", h.id)
		}
	}

	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/keyviz/internal/aggregator"
	"github.com/bnema/keyviz/internal/device"
	"github.com/bnema/keyviz/internal/errkind"
	"github.com/bnema/keyviz/internal/keypress"
	"github.com/bnema/keyviz/internal/textshape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct{}

func (fakeLookup) Lookup(code uint16, shiftHeld bool) (string, error) {
	if code == 30 {
		return "a", nil
	}
	return "", fmt.Errorf("no mapping for %d", code)
}

type fakeRenderer struct {
	mu            sync.Mutex
	paints        [][]textshape.Segment
	closed        bool
	dispatchCount int
}

func (r *fakeRenderer) Paint(segments []textshape.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]textshape.Segment, len(segments))
	copy(cp, segments)
	r.paints = append(r.paints, cp)
	return nil
}

func (r *fakeRenderer) Dispatch() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatchCount++
	return nil
}

func (r *fakeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeRenderer) lastPaint() []textshape.Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paints) == 0 {
		return nil
	}
	return r.paints[len(r.paints)-1]
}

func (r *fakeRenderer) dispatches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatchCount
}

func TestSchedulerPaintsAfterInputEvent(t *testing.T) {
	agg := aggregator.New(0)
	engine := keypress.New(fakeLookup{}, 100, time.Hour, false)
	renderer := &fakeRenderer{}
	sched := New(engine, agg, renderer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sched.Run(ctx)
		close(done)
	}()

	agg.Send(context.Background(), device.RawKeyEvent{DeviceID: "dev0", Scancode: 30, State: device.KeyPressed})

	require.Eventually(t, func() bool {
		return len(renderer.lastPaint()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.True(t, renderer.closed)
}

type flakyRenderer struct {
	fakeRenderer
	paintErrs int32
}

func (r *flakyRenderer) Paint(segments []textshape.Segment) error {
	if atomic.AddInt32(&r.paintErrs, -1) >= 0 {
		return fmt.Errorf("acquire buffer: %w", errkind.ErrResourceExhaustion)
	}
	return r.fakeRenderer.Paint(segments)
}

// A ResourceExhaustion/ProtocolTransient error from a paint must be logged
// and swallowed (§7), not torn the scheduler down over, so a busy buffer
// pool just skips a frame rather than killing the process.
func TestSchedulerSurvivesTransientPaintError(t *testing.T) {
	agg := aggregator.New(0)
	engine := keypress.New(fakeLookup{}, 100, time.Hour, false)
	renderer := &flakyRenderer{paintErrs: 1}
	sched := New(engine, agg, renderer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sched.Run(ctx)
		close(done)
	}()

	agg.Send(context.Background(), device.RawKeyEvent{DeviceID: "dev0", Scancode: 30, State: device.KeyPressed})

	require.Eventually(t, func() bool {
		return renderer.dispatches() > 5
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
	assert.True(t, renderer.closed)
}

func TestSchedulerStopsOnClosedAggregatorChannel(t *testing.T) {
	agg := aggregator.New(0)
	engine := keypress.New(fakeLookup{}, 100, time.Hour, false)
	renderer := &fakeRenderer{}
	sched := New(engine, agg, renderer)

	done := make(chan struct{})
	go func() {
		_ = sched.Run(context.Background())
		close(done)
	}()

	agg.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after aggregator shutdown")
	}
}

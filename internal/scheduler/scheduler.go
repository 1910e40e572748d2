// Package scheduler implements the Frame Scheduler: the single cooperative
// loop that multiplexes input events, the repaint tick, and Wayland
// dispatch, owning the dirty flag and the at-most-one-paint-per-tick
// ordering guarantee.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/keyviz/internal/aggregator"
	"github.com/bnema/keyviz/internal/errkind"
	"github.com/bnema/keyviz/internal/keypress"
	"github.com/bnema/keyviz/internal/logger"
	"github.com/bnema/keyviz/internal/textshape"
)

// tickInterval is the fixed repaint period, ~60Hz.
const tickInterval = 16 * time.Millisecond

// Renderer is the subset of the Surface Manager the scheduler drives. It is
// defined here, not imported from the surface package, so this package
// never depends on Wayland — any renderer satisfying this is schedulable.
type Renderer interface {
	Paint(segments []textshape.Segment) error
	Dispatch() error
	Close() error
}

// Scheduler owns the display-buffer-mutating Engine and the Renderer for
// the lifetime of one run.
type Scheduler struct {
	engine     *keypress.Engine
	aggregator *aggregator.Aggregator
	renderer   Renderer
}

// New constructs a Scheduler wiring the three already-running components
// together; nothing here starts a goroutine of its own.
func New(engine *keypress.Engine, agg *aggregator.Aggregator, renderer Renderer) *Scheduler {
	return &Scheduler{engine: engine, aggregator: agg, renderer: renderer}
}

// Run blocks until ctx is cancelled, the aggregator's channel is closed, or
// the renderer reports a fatal error, driving input processing, the fixed-rate repaint tick, and Wayland
// dispatch. It always shuts the aggregator down and closes the renderer
// before returning, so callers don't need their own cleanup path.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	dirty := false

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil

		case ev, ok := <-s.aggregator.Events():
			if !ok {
				s.shutdown()
				return nil
			}
			if s.engine.ProcessEvent(ev) {
				dirty = true
			}

		case now := <-ticker.C:
			if s.engine.Sweep(now) {
				dirty = true
			}
			if dirty {
				if err := s.renderer.Paint(buildSegments(s.engine)); err != nil {
					if isTransient(err) {
						logger.Warnf("paint skipped this tick: %v", err)
					} else {
						logger.Errorf("paint failed: %v", err)
						s.shutdown()
						return err
					}
				}
				dirty = false
			}
			if err := s.renderer.Dispatch(); err != nil {
				if isTransient(err) {
					logger.Warnf("wayland dispatch hiccup: %v", err)
				} else {
					logger.Errorf("wayland dispatch failed: %v", err)
					s.shutdown()
					return err
				}
			}
		}
	}
}

func (s *Scheduler) shutdown() {
	s.aggregator.Shutdown()
	if err := s.renderer.Close(); err != nil {
		logger.Warnf("error closing renderer: %v", err)
	}
}

// isTransient reports whether err is one of the non-fatal protocol kinds
// (§7: ProtocolTransient logged and swallowed, ResourceExhaustion skips the
// frame) rather than a fatal ProtocolError that should tear the process down.
func isTransient(err error) bool {
	return errors.Is(err, errkind.ErrProtocolTransient) || errors.Is(err, errkind.ErrResourceExhaustion)
}

func buildSegments(e *keypress.Engine) []textshape.Segment {
	records := e.Buffer().Records()
	segments := make([]textshape.Segment, len(records))
	for i, r := range records {
		segments[i] = textshape.Segment{Text: r.Render(), Special: r.IsSpecial}
	}
	return segments
}

package device

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/bnema/keyviz/internal/errkind"
	"github.com/bnema/keyviz/internal/logger"
	evdev "github.com/gvalkov/golang-evdev"
)

// Sink is what a Source forwards events to. The aggregator implements this,
// applying the bounded-channel backpressure policy on Send.
type Sink interface {
	Send(ctx context.Context, ev RawKeyEvent)
}

// Source reads one already-open evdev device and forwards its key events
// to a Sink until the device reports EOF, a fatal I/O error, or ctx is
// cancelled. Blocking reads happen on their own goroutine so they never
// stall the scheduler.
type Source struct {
	id  string
	dev *evdev.InputDevice
}

// Open opens the device node named by a discovered Candidate.
func Open(c Candidate) (*Source, error) {
	dev, err := evdev.Open(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, wrapPermission(c.Path, err)
		}
		return nil, err
	}
	return &Source{id: c.identity, dev: dev}, nil
}

func wrapPermission(path string, err error) error {
	return &os.PathError{Op: "open", Path: path, Err: errors.Join(err, errkind.ErrPermission)}
}

// ID is the device-identity string this source was opened for.
func (s *Source) ID() string { return s.id }

// Close releases the underlying device file.
func (s *Source) Close() error { return s.dev.File.Close() }

const maxBackoff = time.Second

// Run blocks, reading events and forwarding them to sink, until ctx is
// cancelled or the device is gone. Transient read errors are retried with
// exponential backoff capped at one second; EOF and ENODEV are fatal for
// this Source only — other sources are unaffected.
func (s *Source) Run(ctx context.Context, sink Sink) {
	backoff := 10 * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		events, err := s.dev.Read()
		if err != nil {
			if isFatalReadError(err) {
				logger.Debugf("device %s gone: %v", s.id, err)
				return
			}
			logger.Warnf("transient read error on %s: %v", s.id, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = 10 * time.Millisecond

		for _, ev := range events {
			if ev.Type != evdev.EV_KEY {
				continue
			}
			var state KeyState
			switch ev.Value {
			case 0:
				state = KeyReleased
			case 1:
				state = KeyPressed
			case 2:
				state = KeyRepeated
			default:
				continue
			}
			sink.Send(ctx, RawKeyEvent{
				DeviceID:  s.id,
				Timestamp: time.Now(),
				Scancode:  ev.Code,
				State:     state,
			})
		}
	}
}

func isFatalReadError(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrClosed)
}

// Package errkind defines the sentinel error kinds that the rest of this
// module wraps domain errors against, and the process exit code each kind
// maps to at the top level.
package errkind

import "errors"

var (
	// ErrConfig reports a bad CLI flag or configuration value.
	ErrConfig = errors.New("configuration error")
	// ErrPermission reports that the process lacks rights to open input devices.
	ErrPermission = errors.New("permission error")
	// ErrProtocol reports a fatal Wayland protocol violation or lost connection.
	ErrProtocol = errors.New("protocol error")
	// ErrProtocolTransient reports a recoverable dispatch hiccup; logged and ignored.
	ErrProtocolTransient = errors.New("transient protocol error")
	// ErrDeviceTransient reports a recoverable device read failure; retried with backoff.
	ErrDeviceTransient = errors.New("transient device error")
	// ErrDeviceFatal reports that a single device source must stop; others continue.
	ErrDeviceFatal = errors.New("fatal device error")
	// ErrKeymap reports a keymap compilation failure.
	ErrKeymap = errors.New("keymap error")
	// ErrResourceExhaustion reports SHM allocation failure; the frame is skipped.
	ErrResourceExhaustion = errors.New("resource exhaustion")
)

// ExitCode maps an error to the process exit code it should produce, walking
// the error chain with errors.Is. Returns 1 for anything unrecognized.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfig):
		return 2
	case errors.Is(err, ErrPermission):
		return 4
	case errors.Is(err, ErrMissingLayerShell):
		return 3
	default:
		return 1
	}
}

// ErrMissingLayerShell is a distinguished configuration-adjacent error: the
// compositor advertised no wlr-layer-shell global. It exits 3, not 2, so it
// is kept separate from ErrConfig rather than wrapping it.
var ErrMissingLayerShell = errors.New("compositor does not support wlr-layer-shell")

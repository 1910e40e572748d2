// Package keymap wraps the real XKB keymap compiler so the keypress engine
// translates raw evdev scancodes through an actual keymap instead of a
// hand-maintained scancode table.
package keymap

import (
	"fmt"

	"github.com/bnema/keyviz/internal/errkind"
	"github.com/swaywm/go-wlroots/xkb"
)

// Keymap holds one compiled XKB keymap and the state object used to track
// which modifiers are in effect for symbol lookups.
type Keymap struct {
	ctx   *xkb.Context
	km    *xkb.Keymap
	state *xkb.State
}

// New compiles the default keymap (rules=evdev, layout=us) through
// libxkbcommon. Compilation failure is fatal at startup, per the keymap
// error kind's startup semantics.
func New() (*Keymap, error) {
	ctx := xkb.NewContext(xkb.KeySymFlagNoFlags)
	if ctx == nil {
		return nil, fmt.Errorf("create xkb context: %w", errkind.ErrKeymap)
	}
	km := ctx.KeyMap()
	if km == nil {
		ctx.Destroy()
		return nil, fmt.Errorf("compile default xkb keymap: %w", errkind.ErrKeymap)
	}
	state := km.NewState()
	if state == nil {
		km.Destroy()
		ctx.Destroy()
		return nil, fmt.Errorf("create xkb state: %w", errkind.ErrKeymap)
	}
	return &Keymap{ctx: ctx, km: km, state: state}, nil
}

// Close releases the keymap and context.
func (k *Keymap) Close() {
	k.km.Destroy()
	k.ctx.Destroy()
}

// evdevKeycodeOffset is the fixed difference between Linux evdev scancodes
// and XKB keycodes: XKB reserves the first 8 codes for historical X11
// reasons.
const evdevKeycodeOffset = 8

// Lookup translates an evdev scancode into its XKB keysym name (e.g. "a",
// "Return", "F1"), honoring whether Shift is currently held. At runtime a
// lookup failure is non-fatal: the caller logs and drops the event.
func (k *Keymap) Lookup(scancode uint16, shiftHeld bool) (string, error) {
	var depressed uint32
	if shiftHeld {
		depressed = 1 // bit 0: Shift, in the default evdev+us keymap's modifier layout
	}
	k.state.UpdateMask(depressed, 0, 0, 0, 0, 0)

	syms := k.state.Syms(xkb.KeyCode(uint32(scancode) + evdevKeycodeOffset))
	if len(syms) == 0 {
		return "", fmt.Errorf("no keysym for scancode %d: %w", scancode, errkind.ErrKeymap)
	}
	return xkb.KeySymName(syms[0]), nil
}

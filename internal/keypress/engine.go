package keypress

import (
	"strings"
	"time"

	"github.com/bnema/keyviz/internal/device"
	"github.com/bnema/keyviz/internal/logger"
)

// SymbolLookup resolves a scancode to its XKB keysym name. *keymap.Keymap
// satisfies this; tests substitute a fake so they don't need libxkbcommon.
type SymbolLookup interface {
	Lookup(scancode uint16, shiftHeld bool) (string, error)
}

// Engine is the Keypress Engine: it owns modifier-state tracking and the
// display buffer, and is the sole mutator of both. It is not safe for
// concurrent use — the Frame Scheduler is its only caller.
type Engine struct {
	mods          ModifierState
	buf           *Buffer
	lookup        SymbolLookup
	caseSensitive bool
}

// New constructs an Engine bounded by maxLength display columns and
// idleTimeout record lifetime, resolving symbols through lookup.
func New(lookup SymbolLookup, maxLength int, idleTimeout time.Duration, caseSensitive bool) *Engine {
	return &Engine{
		buf:           NewBuffer(maxLength, idleTimeout),
		lookup:        lookup,
		caseSensitive: caseSensitive,
	}
}

// ProcessEvent applies one raw key event to the modifier state and, for a
// non-modifier press or repeat, to the display buffer. It reports whether
// the buffer's visible content changed.
func (e *Engine) ProcessEvent(ev device.RawKeyEvent) bool {
	if src := sourceForScancode(ev.Scancode); src.IsModifierSource() {
		switch ev.State {
		case device.KeyPressed:
			e.mods.Press(src)
		case device.KeyReleased:
			e.mods.Release(src)
		}
		// A standalone modifier press/release never produces a record on
		// its own, whether or not it is later released without a
		// non-modifier key alongside it.
		return false
	}

	if ev.State == device.KeyReleased {
		return false
	}

	name, err := e.lookup.Lookup(ev.Scancode, e.mods.Has(ModShift))
	if err != nil {
		logger.Debugf("dropping event for unmapped scancode %d: %v", ev.Scancode, err)
		return false
	}

	glyph := Glyph(name, e.caseSensitive)
	modGlyphs := e.mods.Glyphs()
	symbol := strings.Join(modGlyphs, "") + glyph

	category := CategoryCharacter
	switch {
	case len(modGlyphs) > 0:
		category = CategoryCombination
	case IsSpecialGlyph(glyph):
		category = CategorySpecial
	}

	now := time.Now()
	return e.buf.Append(Keypress{
		Symbol:    symbol,
		Category:  category,
		Modifiers: e.mods,
		IsSpecial: IsSpecialGlyph(glyph),
		FirstSeen: now,
		LastSeen:  now,
	})
}

// Sweep removes expired records and, if that empties the buffer, resets
// modifier latches per the display buffer's expiry invariant. Reports
// whether anything changed.
func (e *Engine) Sweep(now time.Time) bool {
	changed := e.buf.Sweep(now)
	if changed && e.buf.IsEmpty() {
		e.mods.Reset()
	}
	return changed
}

// Text renders the current display buffer's text.
func (e *Engine) Text() string { return e.buf.Text() }

// Buffer exposes the underlying buffer, primarily for tests and for the
// Surface Manager's paint step.
func (e *Engine) Buffer() *Buffer { return e.buf }

package keypress

// ModBit is a single logical modifier flag.
type ModBit uint8

const (
	ModShift ModBit = 1 << iota
	ModCaps
	ModCtrl
	ModAlt
	ModSuper
	ModNum
)

// ModifierState tracks the logical modifier bits plus which physical
// left/right source keys are currently holding each OR-able modifier down,
// so a release of one side never clears a modifier still held by the other.
type ModifierState struct {
	bits ModBit

	ctrlLeft, ctrlRight   bool
	altLeft, altRight     bool
	shiftLeft, shiftRight bool
	superLeft, superRight bool
}

// Source identifies one physical modifier-capable key.
type Source uint8

const (
	SourceNone Source = iota
	SourceCtrlLeft
	SourceCtrlRight
	SourceAltLeft
	SourceAltRight
	SourceShiftLeft
	SourceShiftRight
	SourceSuperLeft
	SourceSuperRight
	SourceCapsLock
	SourceNumLock
)

// IsModifierSource reports whether src names a modifier key at all (as
// opposed to SourceNone, returned for ordinary keys).
func (src Source) IsModifierSource() bool { return src != SourceNone }

// Press applies a key-press edge for a modifier source key. Toggle keys
// (CapsLock/NumLock) flip their logical bit and ignore release edges
// entirely; the OR-able modifiers set their bit unconditionally on press.
func (m *ModifierState) Press(src Source) {
	switch src {
	case SourceCtrlLeft:
		m.ctrlLeft = true
		m.bits |= ModCtrl
	case SourceCtrlRight:
		m.ctrlRight = true
		m.bits |= ModCtrl
	case SourceAltLeft:
		m.altLeft = true
		m.bits |= ModAlt
	case SourceAltRight:
		m.altRight = true
		m.bits |= ModAlt
	case SourceShiftLeft:
		m.shiftLeft = true
		m.bits |= ModShift
	case SourceShiftRight:
		m.shiftRight = true
		m.bits |= ModShift
	case SourceSuperLeft:
		m.superLeft = true
		m.bits |= ModSuper
	case SourceSuperRight:
		m.superRight = true
		m.bits |= ModSuper
	case SourceCapsLock:
		m.bits ^= ModCaps
	case SourceNumLock:
		m.bits ^= ModNum
	}
}

// Release applies a key-release edge. Clearing an OR-able modifier's
// logical bit only happens once neither of its two physical sources is
// still held. Toggle keys ignore release entirely.
func (m *ModifierState) Release(src Source) {
	switch src {
	case SourceCtrlLeft:
		m.ctrlLeft = false
		if !m.ctrlRight {
			m.bits &^= ModCtrl
		}
	case SourceCtrlRight:
		m.ctrlRight = false
		if !m.ctrlLeft {
			m.bits &^= ModCtrl
		}
	case SourceAltLeft:
		m.altLeft = false
		if !m.altRight {
			m.bits &^= ModAlt
		}
	case SourceAltRight:
		m.altRight = false
		if !m.altLeft {
			m.bits &^= ModAlt
		}
	case SourceShiftLeft:
		m.shiftLeft = false
		if !m.shiftRight {
			m.bits &^= ModShift
		}
	case SourceShiftRight:
		m.shiftRight = false
		if !m.shiftLeft {
			m.bits &^= ModShift
		}
	case SourceSuperLeft:
		m.superLeft = false
		if !m.superRight {
			m.bits &^= ModSuper
		}
	case SourceSuperRight:
		m.superRight = false
		if !m.superLeft {
			m.bits &^= ModSuper
		}
	}
}

// Has reports whether a logical modifier bit is currently set.
func (m ModifierState) Has(b ModBit) bool { return m.bits&b != 0 }

// Empty reports whether no OR-able or toggle modifier bit is set at all.
func (m ModifierState) Empty() bool { return m.bits == 0 }

// Reset clears all logical bits and source-key latches; used when an
// expiry sweep empties the display buffer.
func (m *ModifierState) Reset() { *m = ModifierState{} }

// Glyphs returns the active modifier glyphs in canonical Ctrl, Alt, Shift,
// Super order, ready to be concatenated ahead of a key's own symbol.
func (m ModifierState) Glyphs() []string {
	var out []string
	if m.Has(ModCtrl) {
		out = append(out, " Ctrl+")
	}
	if m.Has(ModAlt) {
		out = append(out, " Alt+")
	}
	if m.Has(ModShift) {
		out = append(out, " Shift+")
	}
	if m.Has(ModSuper) {
		out = append(out, " Super+")
	}
	return out
}

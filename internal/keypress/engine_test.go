package keypress

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bnema/keyviz/internal/device"
	"github.com/stretchr/testify/assert"
)

// fakeLookup stands in for a compiled keymap: it maps a fixed set of
// scancodes to keysym names, upper-casing single-letter names when Shift is
// held, the way the real XKB keymap does for the default US layout.
type fakeLookup map[uint16]string

func (f fakeLookup) Lookup(code uint16, shiftHeld bool) (string, error) {
	name, ok := f[code]
	if !ok {
		return "", fmt.Errorf("no mapping for scancode %d", code)
	}
	if shiftHeld && len(name) == 1 {
		return strings.ToUpper(name), nil
	}
	return name, nil
}

const (
	scanA         = 30
	scanB         = 48
	scanC         = 46
	scanL         = 38
	scanLeftCtrl  = 29
	scanLeftAlt   = 56
	scanLeftShift = 42
)

var testLookup = fakeLookup{
	scanA: "a",
	scanB: "b",
	scanC: "c",
	scanL: "l",
}

func newTestEngine() *Engine {
	return New(testLookup, 100, 200*time.Millisecond, false)
}

func press(code uint16) device.RawKeyEvent {
	return device.RawKeyEvent{DeviceID: "dev0", Scancode: code, State: device.KeyPressed}
}

func release(code uint16) device.RawKeyEvent {
	return device.RawKeyEvent{DeviceID: "dev0", Scancode: code, State: device.KeyReleased}
}

func repeat(code uint16) device.RawKeyEvent {
	return device.RawKeyEvent{DeviceID: "dev0", Scancode: code, State: device.KeyRepeated}
}

func TestPlainCharacterSequence(t *testing.T) {
	e := newTestEngine()

	e.ProcessEvent(press(scanA))
	e.ProcessEvent(release(scanA))
	e.ProcessEvent(press(scanB))
	e.ProcessEvent(release(scanB))
	e.ProcessEvent(press(scanC))
	e.ProcessEvent(release(scanC))

	assert.Equal(t, "abc", e.Text())

	changed := e.Sweep(time.Now().Add(time.Second))
	assert.True(t, changed)
	assert.Equal(t, "", e.Text())
}

func TestCtrlComboSingleRecord(t *testing.T) {
	e := newTestEngine()

	e.ProcessEvent(press(scanLeftCtrl))
	e.ProcessEvent(press(scanL))
	e.ProcessEvent(release(scanL))
	e.ProcessEvent(release(scanLeftCtrl))

	assert.Equal(t, " Ctrl+l", e.Text())
	assert.Equal(t, 1, e.Buffer().Len())
}

func TestModifierComboCanonicalOrder(t *testing.T) {
	e := newTestEngine()

	// Shift pressed before Ctrl; the rendered order must still be
	// Ctrl, Alt, Shift, Super regardless of press order.
	e.ProcessEvent(press(scanLeftShift))
	e.ProcessEvent(press(scanLeftCtrl))
	e.ProcessEvent(press(scanL))

	assert.Equal(t, " Ctrl+ Shift+l", e.Text())
}

func TestAltModifierCombo(t *testing.T) {
	e := newTestEngine()

	e.ProcessEvent(press(scanLeftAlt))
	e.ProcessEvent(press(scanA))

	assert.Equal(t, " Alt+a", e.Text())
}

func TestStandaloneModifierNeverAppends(t *testing.T) {
	e := newTestEngine()

	e.ProcessEvent(press(scanLeftShift))
	e.ProcessEvent(release(scanLeftShift))

	assert.Equal(t, "", e.Text())
	assert.Equal(t, 0, e.Buffer().Len())
}

func TestRapidRepeatCollapsesToSubscriptCount(t *testing.T) {
	e := newTestEngine()

	e.ProcessEvent(press(scanA))
	for i := 0; i < 4; i++ {
		e.ProcessEvent(repeat(scanA))
	}

	assert.Equal(t, "aₓ₅", e.Text())
	assert.Equal(t, 1, e.Buffer().Len())
}

func TestRepeatMismatchStartsNewRecord(t *testing.T) {
	e := newTestEngine()

	e.ProcessEvent(press(scanA))
	e.ProcessEvent(repeat(scanB))

	assert.Equal(t, "ab", e.Text())
	assert.Equal(t, 2, e.Buffer().Len())
}

func TestUnknownScancodeDropped(t *testing.T) {
	e := newTestEngine()

	changed := e.ProcessEvent(press(999))

	assert.False(t, changed)
	assert.Equal(t, "", e.Text())
}

func TestShiftComboLetterStaysLowercasedByDefault(t *testing.T) {
	e := newTestEngine()

	e.ProcessEvent(press(scanLeftShift))
	e.ProcessEvent(press(scanA))

	// The Shift+ prefix already conveys the modifier; the key glyph itself
	// is lower-cased unless case-sensitive rendering is enabled.
	assert.Equal(t, " Shift+a", e.Text())
}

func TestCaseSensitiveKeepsUppercaseLetter(t *testing.T) {
	e := New(testLookup, 100, 200*time.Millisecond, true)

	e.ProcessEvent(press(scanLeftShift))
	e.ProcessEvent(press(scanA))

	assert.Equal(t, " Shift+A", e.Text())
}

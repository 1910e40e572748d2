// Package device implements Device Source: discovering, opening, and
// reading individual keyboard-capable evdev nodes, and dropping elevated
// privileges once every candidate device has been opened.
package device

import "time"

// KeyState is the state an evdev key event reports.
type KeyState int

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
	KeyRepeated KeyState = 2
)

// RawKeyEvent is the unit produced by a Source and consumed, through the
// aggregator, by the keypress engine.
type RawKeyEvent struct {
	DeviceID  string
	Timestamp time.Time
	Scancode  uint16
	State     KeyState
}

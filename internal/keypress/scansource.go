package keypress

import evdev "github.com/gvalkov/golang-evdev"

// sourceForScancode maps an evdev scancode to the modifier Source it drives,
// or SourceNone for an ordinary key.
func sourceForScancode(code uint16) Source {
	switch code {
	case evdev.KEY_LEFTCTRL:
		return SourceCtrlLeft
	case evdev.KEY_RIGHTCTRL:
		return SourceCtrlRight
	case evdev.KEY_LEFTALT:
		return SourceAltLeft
	case evdev.KEY_RIGHTALT:
		return SourceAltRight
	case evdev.KEY_LEFTSHIFT:
		return SourceShiftLeft
	case evdev.KEY_RIGHTSHIFT:
		return SourceShiftRight
	case evdev.KEY_LEFTMETA:
		return SourceSuperLeft
	case evdev.KEY_RIGHTMETA:
		return SourceSuperRight
	case evdev.KEY_CAPSLOCK:
		return SourceCapsLock
	case evdev.KEY_NUMLOCK:
		return SourceNumLock
	default:
		return SourceNone
	}
}

// Package color parses and formats the #RRGGBB[AA] colors accepted on the
// command line, and the short human-readable duration strings used in
// diagnostics.
package color

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/keyviz/internal/errkind"
)

// ARGB is a 32-bit color in 0xRRGGBBAA order. The paint step splits it into
// channels with RGBA() and reorders them for the SHM buffer's memory layout.
type ARGB uint32

// Parse accepts "#RRGGBB" or "#RRGGBBAA"; a missing alpha channel defaults
// to 0xFF (fully opaque).
func Parse(s string) (ARGB, error) {
	if !strings.HasPrefix(s, "#") {
		return 0, fmt.Errorf("color %q must start with '#': %w", s, errkind.ErrConfig)
	}
	hex := s[1:]
	switch len(hex) {
	case 6, 8:
	default:
		return 0, fmt.Errorf("color %q must be #RRGGBB or #RRGGBBAA: %w", s, errkind.ErrConfig)
	}

	var r, g, b, a uint64
	var err error
	if r, err = parseByte(hex[0:2]); err != nil {
		return 0, fmt.Errorf("color %q: invalid red channel: %w", s, errkind.ErrConfig)
	}
	if g, err = parseByte(hex[2:4]); err != nil {
		return 0, fmt.Errorf("color %q: invalid green channel: %w", s, errkind.ErrConfig)
	}
	if b, err = parseByte(hex[4:6]); err != nil {
		return 0, fmt.Errorf("color %q: invalid blue channel: %w", s, errkind.ErrConfig)
	}
	if len(hex) == 8 {
		if a, err = parseByte(hex[6:8]); err != nil {
			return 0, fmt.Errorf("color %q: invalid alpha channel: %w", s, errkind.ErrConfig)
		}
	} else {
		a = 0xFF
	}

	return ARGB(r<<24 | g<<16 | b<<8 | a), nil
}

func parseByte(s string) (uint64, error) {
	var v uint64
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint64(c-'A') + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
	}
	return v, nil
}

// String renders the canonical 8-digit "#RRGGBBAA" form.
func (c ARGB) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// RGBA splits the packed value back into its four byte channels.
func (c ARGB) RGBA() (r, g, b, a uint8) {
	u := uint32(c)
	return uint8(u >> 24), uint8(u >> 16), uint8(u >> 8), uint8(u)
}

// Equal reports whether two parsed colors are byte-identical; used
// by tests to check the parse/format round trip rather than string compare,
// since canonical() in the property is just Parse followed by String.
func (c ARGB) Equal(other ARGB) bool { return c == other }

// FormatDuration renders "<s>.<ms3>s" when the duration is at least one
// second, otherwise "<ms>ms". It exists purely for log lines; it is never
// parsed back.
func FormatDuration(d time.Duration) string {
	if d >= time.Second {
		whole := d / time.Second
		frac := (d % time.Second) / time.Millisecond
		return fmt.Sprintf("%d.%03ds", whole, frac)
	}
	return fmt.Sprintf("%dms", d/time.Millisecond)
}

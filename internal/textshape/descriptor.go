package textshape

import (
	"strconv"
	"strings"
)

// defaultSize is used when a descriptor carries no trailing numeric size.
const defaultSize = 13.0

// Descriptor is a parsed pango-style font description, e.g. "Sans Bold 18"
// or "DejaVu Sans Mono 24".
type Descriptor struct {
	Family string
	Size   float64
}

// ParseDescriptor splits a pango-style descriptor into family and point
// size. A trailing whitespace-separated numeric token is treated as the
// size; everything before it is the family (styles like "Bold" stay folded
// into the family string, since this backend does not do style matching).
func ParseDescriptor(s string) Descriptor {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Descriptor{Family: "Sans", Size: defaultSize}
	}

	last := fields[len(fields)-1]
	if size, err := strconv.ParseFloat(last, 64); err == nil && size > 0 {
		family := strings.TrimSpace(strings.Join(fields[:len(fields)-1], " "))
		if family == "" {
			family = "Sans"
		}
		return Descriptor{Family: family, Size: size}
	}

	return Descriptor{Family: strings.Join(fields, " "), Size: defaultSize}
}

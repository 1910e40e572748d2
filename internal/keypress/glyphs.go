package keypress

import "strings"

// namedGlyphs remaps keysym names (as returned by the keymap, e.g. "Return",
// "Escape", "F1") to their display glyphs. The padding whitespace baked
// into several entries is significant: IsSpecialGlyph below keys off it.
var namedGlyphs = map[string]string{
	"Return":    "⏎",
	"KP_Enter":  "⏎",
	"space":     "␣",
	"BackSpace": "⌫",
	"Escape":    " Esc ",
	"Left":      "⇦",
	"Up":        "⇧",
	"Down":      "⇩",
	"Right":     "⇨",
	"Tab":       "Tab ",
	"Caps_Lock": "Caps ",
}

var fKeyGlyphs = buildFKeyGlyphs()

func buildFKeyGlyphs() map[string]string {
	m := make(map[string]string, 12)
	for i := 1; i <= 12; i++ {
		name := "F" + itoa(i)
		m[name] = name + " "
	}
	return m
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// Glyph maps a keysym name to its rendered glyph, applying the fixed table
// first and falling back to the lower-cased name (or as-is when
// caseSensitive is set).
func Glyph(keysymName string, caseSensitive bool) string {
	if g, ok := namedGlyphs[keysymName]; ok {
		return g
	}
	if g, ok := fKeyGlyphs[keysymName]; ok {
		return g
	}
	if caseSensitive {
		return keysymName
	}
	return strings.ToLower(keysymName)
}

// IsSpecialGlyph reports whether a rendered glyph carries the padding
// whitespace that marks it as special, per the mapping policy: this is how
// the paint step decides to use the special color instead of foreground.
func IsSpecialGlyph(glyph string) bool {
	return strings.HasPrefix(glyph, " ") || strings.HasSuffix(glyph, " ")
}

// columnWidth returns the fixed display-column width of a rendered glyph,
// used to enforce max_length in columns rather than raw record count.
func columnWidth(glyph string) int {
	switch {
	case strings.ContainsAny(glyph, "⏎␣⇦⇧⇩⇨"):
		return 4
	case strings.Contains(glyph, "⌫"):
		return 5
	case strings.HasPrefix(strings.TrimSpace(glyph), "F") && len(strings.TrimSpace(glyph)) <= 3:
		return 5
	case strings.Contains(glyph, "Esc"):
		return 5
	case strings.Contains(glyph, "Ctrl+"):
		return 8
	case strings.Contains(glyph, "Alt+"):
		return 6
	case strings.Contains(glyph, "Shift+"):
		return 10
	case strings.Contains(glyph, "Super+"):
		return 10
	case strings.Contains(glyph, "Tab"):
		return 10
	case strings.Contains(glyph, "Caps"):
		return 8
	default:
		n := len([]rune(glyph))
		if n < 1 {
			return 1
		}
		return n
	}
}

// Package textshape measures and draws the display buffer's text onto an
// RGBA image, behind a narrow interface so the Surface Manager never deals
// with a specific font-rendering library directly.
package textshape

import (
	"image"

	"github.com/bnema/keyviz/internal/color"
)

// Segment is one run of text sharing a single paint color. The Surface
// Manager builds these straight from the display buffer's records, one per
// record, using each record's special-glyph flag to pick special vs.
// foreground.
type Segment struct {
	Text    string
	Special bool
}

// Shaper measures and draws a sequence of colored text segments. Close
// releases any font resources it holds.
type Shaper interface {
	// Measure returns the pixel width and height the segments would occupy
	// painted on a single line.
	Measure(segments []Segment) (width, height int)

	// Draw paints segments left to right starting at the image origin,
	// vertically centered, using foreground for ordinary segments and
	// special for segments marked Special.
	Draw(dst *image.RGBA, segments []Segment, foreground, special color.ARGB)

	// Close releases font resources.
	Close() error
}

// segmentsText concatenates every segment's text, used by backends that
// shape the whole line as one run rather than per-segment.
func segmentsText(segments []Segment) string {
	total := 0
	for _, s := range segments {
		total += len(s.Text)
	}
	out := make([]byte, 0, total)
	for _, s := range segments {
		out = append(out, s.Text...)
	}
	return string(out)
}

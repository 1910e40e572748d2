package textshape

import (
	"image"
	stdcolor "image/color"
	"os"

	"github.com/bnema/keyviz/internal/color"
	"github.com/bnema/keyviz/internal/logger"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const dpi = 72

// defaultShaper is the Shaper used when no more specific render backend is
// configured. It loads a system TTF/OTF matching the configured pango-style
// descriptor and falls back to a built-in bitmap face if none is found or
// it fails to parse, so startup never blocks on font discovery.
type defaultShaper struct {
	face   font.Face
	closer func() error
}

// NewDefault resolves descriptor to a font.Face and wraps it as a Shaper.
func NewDefault(descriptor string) (Shaper, error) {
	d := ParseDescriptor(descriptor)

	if path := findFontFile(d.Family); path != "" {
		if face, closer, err := loadOpentypeFace(path, d.Size); err == nil {
			return &defaultShaper{face: face, closer: closer}, nil
		} else {
			logger.Warnf("falling back to built-in font, failed to load %q: %v", path, err)
		}
	} else {
		logger.Debugf("no system font file matched family %q, using built-in font", d.Family)
	}

	return &defaultShaper{face: basicfont.Face7x13, closer: func() error { return nil }}, nil
}

func loadOpentypeFace(path string, size float64) (font.Face, func() error, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	tt, err := opentype.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, nil, err
	}
	return face, face.Close, nil
}

func (s *defaultShaper) Measure(segments []Segment) (width, height int) {
	text := segmentsText(segments)
	width = font.MeasureString(s.face, text).Round()
	m := s.face.Metrics()
	height = (m.Ascent + m.Descent).Round()
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	return width, height
}

func (s *defaultShaper) Draw(dst *image.RGBA, segments []Segment, foreground, special color.ARGB) {
	m := s.face.Metrics()
	lineHeight := (m.Ascent + m.Descent).Round()
	baseline := m.Ascent.Round() + (dst.Bounds().Dy()-lineHeight)/2

	d := &font.Drawer{Dst: dst, Face: s.face}
	x := fixed.I(0)
	for _, seg := range segments {
		c := foreground
		if seg.Special {
			c = special
		}
		d.Src = image.NewUniform(toNRGBA(c))
		d.Dot = fixed.Point26_6{X: x, Y: fixed.I(baseline)}
		d.DrawString(seg.Text)
		x = d.Dot.X
	}
}

// toNRGBA swaps the red and blue channels before handing the color to
// font.Drawer. dst is the mmap'd WL_SHM_FORMAT_ARGB8888 buffer viewed as an
// image.RGBA; image.RGBA.Set stores a color's channels into Pix in literal
// R,G,B,A order, but the SHM buffer's actual memory layout is B,G,R,A, so
// swapping here is what makes the bytes land correctly.
func toNRGBA(c color.ARGB) stdcolor.NRGBA {
	r, g, b, a := c.RGBA()
	return stdcolor.NRGBA{R: b, G: g, B: r, A: a}
}

func (s *defaultShaper) Close() error {
	return s.closer()
}

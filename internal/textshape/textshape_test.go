package textshape

import (
	"image"
	"testing"

	"github.com/bnema/keyviz/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	cases := []struct {
		in   string
		want Descriptor
	}{
		{"Sans 18", Descriptor{Family: "Sans", Size: 18}},
		{"DejaVu Sans Mono 24", Descriptor{Family: "DejaVu Sans Mono", Size: 24}},
		{"Sans Bold", Descriptor{Family: "Sans Bold", Size: defaultSize}},
		{"", Descriptor{Family: "Sans", Size: defaultSize}},
	}
	for _, c := range cases {
		got := ParseDescriptor(c.in)
		assert.Equal(t, c.want, got, "descriptor %q", c.in)
	}
}

func TestDefaultShaperFallsBackToBuiltinFont(t *testing.T) {
	s, err := NewDefault("Some Font That Almost Certainly Does Not Exist 16")
	require.NoError(t, err)
	defer s.Close()

	w, h := s.Measure([]Segment{{Text: "abc"}})
	assert.Positive(t, w)
	assert.Positive(t, h)
}

func TestDrawDoesNotPanicOnEmptyText(t *testing.T) {
	s, err := NewDefault("")
	require.NoError(t, err)
	defer s.Close()

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	fg, _ := color.Parse("#FFFFFFFF")
	sp, _ := color.Parse("#AAAAAAFF")

	assert.NotPanics(t, func() {
		s.Draw(img, []Segment{{Text: ""}}, fg, sp)
	})
}

package color

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    ARGB
		wantErr bool
	}{
		{"#FF0000", 0xFF0000FF, false},
		{"#12345678", 0x12345678, false},
		{"#ffffff", 0xFFFFFFFF, false},
		{"#00000000", 0x00000000, false},
		{"zzz", 0, true},
		{"FF0000", 0, true},
		{"#FF00", 0, true},
		{"#GG0000", 0, true},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestRoundTrip(t *testing.T) {
	// P5: format(parse(s)) == canonical(s) for canonical 8-digit forms.
	canonical := []string{"#FF0000FF", "#12345678", "#00000000", "#AABBCCDD"}
	for _, s := range canonical {
		parsed, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, parsed.String())
	}
}

func TestRGBA(t *testing.T) {
	c, err := Parse("#11223344")
	require.NoError(t, err)
	r, g, b, a := c.RGBA()
	assert.Equal(t, uint8(0x11), r)
	assert.Equal(t, uint8(0x22), g)
	assert.Equal(t, uint8(0x33), b)
	assert.Equal(t, uint8(0x44), a)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "200ms", FormatDuration(200*time.Millisecond))
	assert.Equal(t, "1.500s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "0ms", FormatDuration(0))
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Defaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 100, c.MaxLength)
	assert.Equal(t, 32, c.Margin)
	assert.True(t, c.Anchors.Has(AnchorBottom))
}

func TestParseAnchors(t *testing.T) {
	set, err := ParseAnchors("top,left")
	require.NoError(t, err)
	assert.True(t, set.Has(AnchorTop))
	assert.True(t, set.Has(AnchorLeft))
	assert.False(t, set.Has(AnchorBottom))

	_, err = ParseAnchors("diagonal")
	assert.Error(t, err)

	set, err = ParseAnchors("")
	require.NoError(t, err)
	assert.True(t, set.Has(AnchorBottom))
}

func TestValidateRejectsBadValues(t *testing.T) {
	c := Defaults()
	c.MaxLength = 0
	assert.Error(t, c.Validate())

	c = Defaults()
	c.IdleTimeout = 0
	assert.Error(t, c.Validate())

	c = Defaults()
	c.Anchors = 0
	assert.Error(t, c.Validate())

	c = Defaults()
	c.DevicePath = ""
	assert.Error(t, c.Validate())
}

// Package config holds the flat set of settings this process accepts on
// the command line and turns them into validated, typed values the rest of
// the module consumes directly. There is no on-disk config file: every run
// starts from defaults plus whatever flags were passed.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/keyviz/internal/color"
	"github.com/bnema/keyviz/internal/errkind"
)

// Anchor is one edge a layer surface can be pinned to.
type Anchor uint8

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// AnchorSet is the configured subset of edges the surface is anchored to.
type AnchorSet uint8

func (s AnchorSet) Has(a Anchor) bool { return AnchorSet(a)&s != 0 }

// ParseAnchors accepts a comma-separated list drawn from top,left,right,bottom.
func ParseAnchors(s string) (AnchorSet, error) {
	if strings.TrimSpace(s) == "" {
		return AnchorSet(AnchorBottom), nil
	}
	var set AnchorSet
	for _, tok := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "top":
			set |= AnchorSet(AnchorTop)
		case "bottom":
			set |= AnchorSet(AnchorBottom)
		case "left":
			set |= AnchorSet(AnchorLeft)
		case "right":
			set |= AnchorSet(AnchorRight)
		default:
			return 0, fmt.Errorf("unknown anchor %q: %w", tok, errkind.ErrConfig)
		}
	}
	return set, nil
}

// Config is the fully validated set of settings for one run.
type Config struct {
	Background color.ARGB
	Foreground color.ARGB
	Special    color.ARGB

	Font string

	IdleTimeout time.Duration
	MaxLength   int

	Anchors AnchorSet
	Margin  int

	DevicePath     string
	RescanInterval time.Duration
	CaseSensitive  bool
	LogLevel       string
}

// Defaults returns the configuration in effect before any flags are applied.
func Defaults() Config {
	bg, _ := color.Parse("#000000CC")
	fg, _ := color.Parse("#FFFFFFFF")
	sp, _ := color.Parse("#AAAAAAFF")
	return Config{
		Background:     bg,
		Foreground:     fg,
		Special:        sp,
		Font:           "monospace 16",
		IdleTimeout:    200 * time.Millisecond,
		MaxLength:      100,
		Anchors:        AnchorSet(AnchorBottom),
		Margin:         32,
		DevicePath:     "/dev/input",
		RescanInterval: 2 * time.Second,
		CaseSensitive:  false,
		LogLevel:       "info",
	}
}

// Validate enforces the bounds the rest of this module relies on, so a bad
// flag value fails fast at startup rather than surfacing as a confusing
// failure deep in the render loop.
func (c Config) Validate() error {
	if c.MaxLength <= 0 {
		return fmt.Errorf("length-limit must be positive, got %d: %w", c.MaxLength, errkind.ErrConfig)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s: %w", c.IdleTimeout, errkind.ErrConfig)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d: %w", c.Margin, errkind.ErrConfig)
	}
	if c.Anchors == 0 {
		return fmt.Errorf("at least one anchor edge must be set: %w", errkind.ErrConfig)
	}
	if c.DevicePath == "" {
		return fmt.Errorf("device-path must not be empty: %w", errkind.ErrConfig)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/keyviz/internal/aggregator"
	"github.com/bnema/keyviz/internal/color"
	"github.com/bnema/keyviz/internal/config"
	"github.com/bnema/keyviz/internal/device"
	"github.com/bnema/keyviz/internal/errkind"
	"github.com/bnema/keyviz/internal/keymap"
	"github.com/bnema/keyviz/internal/keypress"
	"github.com/bnema/keyviz/internal/logger"
	"github.com/bnema/keyviz/internal/scheduler"
	"github.com/bnema/keyviz/internal/surface"
	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "0.1.0-dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var (
	flagBackground     string
	flagForeground     string
	flagSpecial        string
	flagFont           string
	flagTimeout        time.Duration
	flagAnchor         string
	flagMargin         int
	flagLengthLimit    int
	flagDevicePath     string
	flagRescanInterval time.Duration
	flagCaseSensitive  bool
	flagLogLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "keyviz",
	Short: "On-screen keystroke visualizer for wlroots compositors",
	Long: `keyviz captures keyboard input system-wide via evdev and renders the
keys and combinations you press as a transparent overlay anchored to a
screen edge, using the wlr-layer-shell protocol.`,
	SilenceUsage: true,
	RunE:         runOverlay,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	defaults := config.Defaults()

	flags := rootCmd.Flags()
	flags.StringVar(&flagBackground, "background", defaults.Background.String(), "background color, #RRGGBB[AA]")
	flags.StringVar(&flagForeground, "foreground", defaults.Foreground.String(), "foreground color, #RRGGBB[AA]")
	flags.StringVar(&flagSpecial, "special", defaults.Special.String(), "special-key color, #RRGGBB[AA]")
	flags.StringVar(&flagFont, "font", defaults.Font, "font description, e.g. \"Sans 18\"")
	flags.DurationVar(&flagTimeout, "timeout", defaults.IdleTimeout, "idle time before a key fades")
	flags.StringVar(&flagAnchor, "anchor", "bottom", "comma-separated screen edges: top,bottom,left,right")
	flags.IntVar(&flagMargin, "margin", defaults.Margin, "margin in pixels from the anchored edge")
	flags.IntVar(&flagLengthLimit, "length-limit", defaults.MaxLength, "max display width in columns")
	flags.StringVar(&flagDevicePath, "device-path", defaults.DevicePath, "root directory to scan for input devices")
	flags.DurationVar(&flagRescanInterval, "rescan-interval", defaults.RescanInterval, "how often to rescan for hot-plugged devices")
	flags.BoolVar(&flagCaseSensitive, "case-sensitive", defaults.CaseSensitive, "render letters with their physical case instead of lower-casing them")
	flags.StringVar(&flagLogLevel, "log-level", defaults.LogLevel, "debug, info, warn, or error (overridden by LOG_LEVEL)")

	rootCmd.AddCommand(versionCmd)
}

func runOverlay(cmd *cobra.Command, args []string) error {
	if os.Getenv("LOG_LEVEL") == "" {
		logger.SetLevel(flagLogLevel)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	km, err := keymap.New()
	if err != nil {
		return err
	}
	defer km.Close()

	agg := aggregator.New(aggregator.DefaultCapacity)
	opened := make(map[string]bool)

	if n := openCandidates(agg, cfg.DevicePath, opened); n == 0 {
		fmt.Fprint(os.Stderr, device.RemediationText)
		return fmt.Errorf("no keyboard device could be opened: %w", errkind.ErrPermission)
	}

	if err := device.DropPrivileges(); err != nil {
		return err
	}

	go rescanLoop(ctx, agg, cfg.DevicePath, cfg.RescanInterval, opened)

	renderer, err := surface.New(cfg)
	if err != nil {
		return err
	}

	engine := keypress.New(km, cfg.MaxLength, cfg.IdleTimeout, cfg.CaseSensitive)
	sched := scheduler.New(engine, agg, renderer)

	return sched.Run(ctx)
}

func buildConfig() (config.Config, error) {
	cfg := config.Defaults()

	bg, err := colorFlag(flagBackground)
	if err != nil {
		return cfg, err
	}
	fg, err := colorFlag(flagForeground)
	if err != nil {
		return cfg, err
	}
	sp, err := colorFlag(flagSpecial)
	if err != nil {
		return cfg, err
	}
	anchors, err := config.ParseAnchors(flagAnchor)
	if err != nil {
		return cfg, err
	}

	cfg.Background = bg
	cfg.Foreground = fg
	cfg.Special = sp
	cfg.Font = flagFont
	cfg.IdleTimeout = flagTimeout
	cfg.Anchors = anchors
	cfg.Margin = flagMargin
	cfg.MaxLength = flagLengthLimit
	cfg.DevicePath = flagDevicePath
	cfg.RescanInterval = flagRescanInterval
	cfg.CaseSensitive = flagCaseSensitive
	cfg.LogLevel = flagLogLevel
	return cfg, nil
}

func colorFlag(s string) (color.ARGB, error) {
	return color.Parse(s)
}

// openCandidates discovers keyboard devices under root, opens and spawns any
// not already tracked in opened, and reports how many it newly opened.
func openCandidates(agg *aggregator.Aggregator, root string, opened map[string]bool) int {
	candidates, err := device.Discover(root)
	if err != nil {
		logger.Warnf("device scan of %s failed: %v", root, err)
		return 0
	}

	newly := 0
	for _, c := range candidates {
		if opened[c.Path] {
			continue
		}
		src, err := device.Open(c)
		if err != nil {
			logger.Warnf("failed to open device %s: %v", c.Path, err)
			continue
		}
		agg.Spawn(src)
		opened[c.Path] = true
		newly++
	}
	return newly
}

// rescanLoop periodically re-scans the device root for hot-plugged keyboards
// and spawns sources for any that weren't present at startup. It runs for
// the lifetime of the process and exits when ctx is cancelled.
func rescanLoop(ctx context.Context, agg *aggregator.Aggregator, root string, interval time.Duration, opened map[string]bool) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := openCandidates(agg, root, opened); n > 0 {
				logger.Infof("found %d newly connected keyboard device(s)", n)
			}
		}
	}
}

package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"
)

// Candidate is a keyboard-capable device node discovered under the
// configured device root, ready to be opened by a Source.
type Candidate struct {
	Path   string
	Name   string
	identity string
}

// excludeNamePatterns filters device names that advertise a keyboard-class
// key but aren't keyboards a user would expect keystrokes from, mirroring
// the exclusions this codebase already applies to its own device scan.
var excludeNamePatterns = []string{
	"virtual console", "system console", "tty", "vt",
	"power button", "sleep button", "lid switch", "video bus",
}

// Discover scans root for keyboard-candidate nodes: anything advertising at
// least one keyboard-class key in its EV_KEY capability bitmap. Devices
// that open more than once under different paths (e.g. via by-id symlinks)
// are deduplicated by device identity rather than path.
func Discover(root string) ([]Candidate, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read device root %s: %w", root, err)
	}

	seen := make(map[string]bool)
	var out []Candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		path := filepath.Join(root, entry.Name())

		dev, err := evdev.Open(path)
		if err != nil {
			continue // typically a permission probe artifact or a race with unplug
		}

		if !isKeyboardCandidate(dev) {
			_ = dev.File.Close()
			continue
		}

		id := identity(dev)
		if seen[id] {
			_ = dev.File.Close()
			continue
		}
		seen[id] = true

		out = append(out, Candidate{Path: path, Name: dev.Name, identity: id})
		_ = dev.File.Close()
	}
	return out, nil
}

func identity(dev *evdev.InputDevice) string {
	return fmt.Sprintf("%s|%s", dev.Name, dev.Phys)
}

func isKeyboardCandidate(dev *evdev.InputDevice) bool {
	name := strings.ToLower(dev.Name)
	for _, pattern := range excludeNamePatterns {
		if strings.Contains(name, pattern) {
			return false
		}
	}

	for capType, codes := range dev.Capabilities {
		if capType.Type != evdev.EV_KEY {
			continue
		}
		for _, code := range codes {
			if code.Code >= evdev.KEY_ESC && code.Code <= evdev.KEY_KPDOT {
				return true
			}
		}
	}
	return false
}

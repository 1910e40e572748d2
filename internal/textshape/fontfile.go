package textshape

import (
	"os"
	"path/filepath"
	"strings"
)

// fontSearchDirs are walked, in order, looking for a TTF/OTF file whose name
// loosely matches the requested family. This stands in for a full
// fontconfig lookup, which is out of scope: most distributions install
// their default sans fonts under one of these trees.
var fontSearchDirs = []string{
	"/usr/share/fonts",
	"/usr/local/share/fonts",
}

func userFontDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "fonts")
}

// findFontFile searches fontSearchDirs (plus the user's font directory) for
// a file whose base name contains every space-separated word of family,
// case-insensitively. It returns "" if nothing matches.
func findFontFile(family string) string {
	words := strings.Fields(strings.ToLower(family))
	if len(words) == 0 {
		return ""
	}

	dirs := append([]string{userFontDir()}, fontSearchDirs...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		found := ""
		_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || found != "" {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".ttf" && ext != ".otf" {
				return nil
			}
			name := strings.ToLower(d.Name())
			for _, w := range words {
				if !strings.Contains(name, w) {
					return nil
				}
			}
			found = path
			return nil
		})
		if found != "" {
			return found
		}
	}
	return ""
}

package project

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// ManifestName is the file that marks a project root.
const ManifestName = "rial.toml"

// parents yields dir and each of its ancestors up to the filesystem root.
func parents(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			up := filepath.Dir(dir)
			if up == dir {
				return
			}
			dir = up
		}
	}
}

// FindManifest locates the nearest rial.toml at or above start. start may
// name a file, in which case the search begins in its directory.
func FindManifest(start string) (path string, ok bool, err error) {
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("resolve %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for d := range parents(dir) {
		candidate := filepath.Join(d, ManifestName)
		_, err := os.Stat(candidate)
		switch {
		case err == nil:
			return candidate, true, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

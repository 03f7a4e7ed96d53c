package diagfmt

import (
	"path/filepath"

	"rial/internal/source"
)

// PathMode specifies how unit file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
	ShowFile  bool // печатать путь к .rast под заголовком
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// ParsePathMode maps a flag value onto PathMode; unknown values mean auto.
func ParsePathMode(s string) PathMode {
	switch s {
	case "absolute":
		return PathModeAbsolute
	case "relative":
		return PathModeRelative
	case "basename":
		return PathModeBasename
	default:
		return PathModeAuto
	}
}

// displayPath renders the path of a unit file for mode. Auto keeps short
// or relative paths and shortens long absolute ones to the base name.
func displayPath(f source.File, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := source.AbsolutePath(f.Path); err == nil {
			return abs
		}
	case PathModeRelative:
		if rel, err := source.RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case PathModeBasename:
		return source.BaseName(f.Path)
	default:
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return source.BaseName(f.Path)
		}
	}
	return f.Path
}

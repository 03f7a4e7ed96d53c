package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Unit file extensions: text form and msgpack form.
const (
	ExtText   = ".rast"
	ExtBinary = ".rast.mp"
)

// StdProject is the project prefix of builtin/ and std/ modules.
const StdProject = "rial"

// IsUnitFile reports whether path names a unit in either form.
func IsUnitFile(path string) bool {
	return strings.HasSuffix(path, ExtText) || strings.HasSuffix(path, ExtBinary)
}

func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ModuleName derives `project:dir:file` from a path relative to the source
// directory. Units under builtin/ and std/ belong to the rial project.
func ModuleName(project, rel string) (string, error) {
	rel = filepath.ToSlash(rel)
	switch {
	case strings.HasSuffix(rel, ExtBinary):
		rel = strings.TrimSuffix(rel, ExtBinary)
	case strings.HasSuffix(rel, ExtText):
		rel = strings.TrimSuffix(rel, ExtText)
	default:
		return "", fmt.Errorf("%s: not a unit file", rel)
	}
	segs := strings.Split(strings.Trim(rel, "/"), "/")
	for _, seg := range segs {
		if !IsValidModuleIdent(seg) {
			return "", fmt.Errorf("%s: invalid module segment %q", rel, seg)
		}
	}
	if segs[0] == "builtin" || segs[0] == "std" {
		project = StdProject
	}
	if project == "" {
		return "", errors.New("empty project name")
	}
	return project + ":" + strings.Join(segs, ":"), nil
}

// UnitFile is a discovered unit with its derived module name.
type UnitFile struct {
	Path   string
	Module string
}

// CollectUnits walks dir and returns every unit file in lexical order.
// When a unit exists in both forms the msgpack file wins.
func CollectUnits(project, dir string) ([]UnitFile, error) {
	byModule := make(map[string]UnitFile)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsUnitFile(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name, err := ModuleName(project, rel)
		if err != nil {
			return err
		}
		if prev, ok := byModule[name]; ok && strings.HasSuffix(prev.Path, ExtBinary) {
			return nil
		}
		byModule[name] = UnitFile{Path: path, Module: name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]UnitFile, 0, len(byModule))
	for _, u := range byModule {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out, nil
}

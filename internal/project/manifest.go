package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the decoded rial.toml of a project.
type Manifest struct {
	Root    string `toml:"-"`
	Package PackageSection
	Build   BuildSection
}

// PackageSection describes [package].
type PackageSection struct {
	Name string `toml:"name"`
}

// BuildSection describes [build]. Zero values mean "use the default".
type BuildSection struct {
	Src            string `toml:"src"`
	Out            string `toml:"out"`
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	EmitIR         bool   `toml:"emit_ir"`
}

const (
	DefaultSrc            = "src"
	DefaultOut            = "build"
	DefaultMaxDiagnostics = 100
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing in the manifest.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameInvalid indicates that [package].name is missing or not an identifier.
	ErrPackageNameInvalid = errors.New("invalid [package].name")
)

// LoadManifest parses rial.toml and fills in defaults for the [build]
// section. Root is set to the directory of path.
func LoadManifest(path string) (Manifest, error) {
	var cfg Manifest
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	cfg.Package.Name = strings.TrimSpace(cfg.Package.Name)
	if !IsValidModuleIdent(cfg.Package.Name) {
		return Manifest{}, fmt.Errorf("%s: %w: %q", path, ErrPackageNameInvalid, cfg.Package.Name)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Manifest{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Build.Jobs < 0 {
		return Manifest{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if cfg.Build.Src == "" {
		cfg.Build.Src = DefaultSrc
	}
	if cfg.Build.Out == "" {
		cfg.Build.Out = DefaultOut
	}
	if !meta.IsDefined("build", "max_diagnostics") {
		cfg.Build.MaxDiagnostics = DefaultMaxDiagnostics
	}
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// SrcDir returns the absolute-or-root-relative source directory.
func (m Manifest) SrcDir() string {
	if filepath.IsAbs(m.Build.Src) {
		return m.Build.Src
	}
	return filepath.Join(m.Root, m.Build.Src)
}

// OutDir returns the output directory.
func (m Manifest) OutDir() string {
	if filepath.IsAbs(m.Build.Out) {
		return m.Build.Out
	}
	return filepath.Join(m.Root, m.Build.Out)
}

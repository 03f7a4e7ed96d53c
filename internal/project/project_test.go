package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestModuleName(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{name: "flat", rel: "main.rast", want: "app:main"},
		{name: "nested", rel: "geo/point.rast", want: "app:geo:point"},
		{name: "binary", rel: "geo/point.rast.mp", want: "app:geo:point"},
		{name: "std", rel: "std/io.rast", want: "rial:std:io"},
		{name: "builtin", rel: "builtin/int.rast", want: "rial:builtin:int"},
		{name: "bad segment", rel: "1geo/point.rast", wantErr: true},
		{name: "not a unit", rel: "main.go", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ModuleName("app", tt.rel)
			if tt.wantErr {
				be.Err(t, err)
				return
			}
			be.Err(t, err, nil)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ManifestName)
	writeFile(t, path, `
[package]
name = "app"

[build]
jobs = 4
emit_ir = true
`)
	m, err := LoadManifest(path)
	be.Err(t, err, nil)
	be.Equal(t, m.Package.Name, "app")
	be.Equal(t, m.Build.Jobs, 4)
	be.Equal(t, m.Build.EmitIR, true)
	be.Equal(t, m.Build.MaxDiagnostics, DefaultMaxDiagnostics)
	be.Equal(t, m.SrcDir(), filepath.Join(root, "src"))
	be.Equal(t, m.OutDir(), filepath.Join(root, "build"))
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		is      error
	}{
		{name: "no package", content: "[build]\njobs = 1\n", is: ErrPackageSectionMissing},
		{name: "bad name", content: "[package]\nname = \"my app\"\n", is: ErrPackageNameInvalid},
		{name: "unknown key", content: "[package]\nname = \"app\"\nversion = 2\n"},
		{name: "negative jobs", content: "[package]\nname = \"app\"\n[build]\njobs = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tt.content)
			_, err := LoadManifest(path)
			be.Err(t, err)
			if tt.is != nil {
				be.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[package]\nname = \"app\"\n")
	nested := filepath.Join(root, "src", "geo")
	be.Err(t, os.MkdirAll(nested, 0o755), nil)
	unit := filepath.Join(nested, "point.rast")
	writeFile(t, unit, "")

	abs, _ := filepath.Abs(root)
	want := filepath.Join(abs, ManifestName)
	for _, start := range []string{root, nested, unit} {
		got, ok, err := FindManifest(start)
		be.Err(t, err, nil)
		be.True(t, ok)
		be.Equal(t, got, want)
	}

	_, ok, err := FindManifest(t.TempDir())
	be.Err(t, err, nil)
	be.True(t, !ok)
}

func TestCollectUnits(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "main.rast"), "")
	writeFile(t, filepath.Join(src, "geo", "point.rast"), "")
	writeFile(t, filepath.Join(src, "geo", "point.rast.mp"), "")
	writeFile(t, filepath.Join(src, "std", "io.rast"), "")
	writeFile(t, filepath.Join(src, "README.md"), "")

	units, err := CollectUnits("app", src)
	be.Err(t, err, nil)

	var names []string
	for _, u := range units {
		names = append(names, u.Module)
	}
	be.Equal(t, names, []string{"app:geo:point", "app:main", "rial:std:io"})
	be.Equal(t, filepath.Base(units[0].Path), "point.rast.mp")
}

package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestAddAssignsDenseIDs(t *testing.T) {
	fs := NewFileSet()
	a := fs.Add("main.rast", []byte("(unit)"), 0)
	b := fs.Add("main.rast", []byte(`(unit "x")`), 0)
	be.Equal(t, a, FileID(0))
	be.Equal(t, b, FileID(1))
	be.Equal(t, fs.Len(), 2)

	f, ok := fs.Get(a)
	be.True(t, ok)
	be.Equal(t, string(f.Content), "(unit)")

	_, ok = fs.Get(7)
	be.Equal(t, ok, false)
	be.Equal(t, fs.Module(7), "<unknown>")
}

func TestModuleFallsBackToPath(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("src/app/../app/main.rast", nil)
	be.Equal(t, fs.Module(id), "src/app/main.rast")
	fs.SetModule(id, "app:main")
	be.Equal(t, fs.Module(id), "app:main")
}

func TestLineIndex(t *testing.T) {
	fs := NewFileSet()
	text := fs.AddVirtual("a.rast", []byte("a\nb\n"))
	empty := fs.AddVirtual("empty.rast", nil)
	bin := fs.Add("bin.rast.mp", []byte{'\n', '\n'}, FileBinary)

	f, _ := fs.Get(text)
	be.Equal(t, f.LineIdx, []uint32{1, 3})
	be.True(t, f.Flags&FileVirtual != 0)
	f, _ = fs.Get(empty)
	be.Equal(t, len(f.LineIdx), 0)
	f, _ = fs.Get(bin)
	be.True(t, f.LineIdx == nil)
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.rast", []byte("ab\ncd\n\nx"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам \n относится к своей строке
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, tt := range tests {
		be.Equal(t, fs.Resolve(id, tt.off), tt.want)
	}
	be.Equal(t, fs.Resolve(9, 0), LineCol{})
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    string
		flags   FileFlags
	}{
		{"plain.rast", "a\nb\n", "a\nb\n", 0},
		{"bom.rast", "\xEF\xBB\xBFa\nb\n", "a\nb\n", FileNormalized},
		{"crlf.rast", "a\r\nb\r\n", "a\nb\n", FileNormalized},
		{"lone-cr.rast", "a\rb", "a\rb", 0},
		{"unit.rast.mp", "a\r\nb", "a\r\nb", FileBinary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			be.Err(t, os.WriteFile(path, []byte(tt.content), 0o600), nil)
			fs := NewFileSet()
			id, err := fs.Load(path)
			be.Err(t, err, nil)
			f, _ := fs.Get(id)
			be.Equal(t, string(f.Content), tt.want)
			be.Equal(t, f.Flags, tt.flags)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := NewFileSet().Load(filepath.Join(t.TempDir(), "nope.rast"))
	be.Err(t, err)
}

func TestBaseDir(t *testing.T) {
	be.Equal(t, NewFileSetWithBase("/srv/app").BaseDir(), "/srv/app")
	wd, err := os.Getwd()
	be.Err(t, err, nil)
	be.Equal(t, NewFileSet().BaseDir(), wd)
}

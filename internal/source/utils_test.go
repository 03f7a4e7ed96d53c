package source

import (
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestRelativePath(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "base")

	inside, err := RelativePath(filepath.Join(base, "nested", "file.rast"), base)
	be.Err(t, err, nil)
	be.Equal(t, inside, "nested/file.rast")

	// выход за базу даёт абсолютный путь
	outsidePath := filepath.Join(tmp, "other", "file.rast")
	outside, err := RelativePath(outsidePath, base)
	be.Err(t, err, nil)
	be.Equal(t, outside, normalizePath(outsidePath))
}

func TestBaseNameAndAbsolute(t *testing.T) {
	be.Equal(t, BaseName("src/app/../geo/shapes.rast"), "shapes.rast")
	abs, err := AbsolutePath("x/../y.rast")
	be.Err(t, err, nil)
	be.True(t, filepath.IsAbs(filepath.FromSlash(abs)))
	be.Equal(t, BaseName(abs), "y.rast")
}

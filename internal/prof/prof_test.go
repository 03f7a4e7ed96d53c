package prof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.out"),
		Mem:   filepath.Join(dir, "mem.out"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	s, err := Start(opts)
	be.Err(t, err, nil)
	be.Err(t, s.Stop(), nil)
	// второй вызов ничего не делает
	be.Err(t, s.Stop(), nil)

	for _, p := range []string{opts.CPU, opts.Mem, opts.Trace} {
		info, err := os.Stat(p)
		be.Err(t, err, nil)
		be.True(t, info.Size() > 0)
	}
}

func TestNilSession(t *testing.T) {
	var s *Session
	be.Err(t, s.Stop(), nil)
}

package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"rial/internal/diag"
	"rial/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/app/main.rast", []byte("(unit)\n"))
	fs.SetModule(id, "app:main")

	bag := diag.NewBag(10)
	d := diag.NewError(diag.LowUnknownIdentifier, source.At(id, source.Pos{Line: 3, Col: 5}), `unknown identifier "x"`).
		WithNote(source.At(id, source.Pos{Line: 1, Col: 1}), "did you mean y?")
	bag.Add(d)
	return bag, fs
}

func TestPrettyHeader(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	want := "app:main[3:5] ERROR LOW3001: unknown identifier \"x\"\n"
	if buf.String() != want {
		t.Fatalf("want %q, got %q", want, buf.String())
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)

	tests := []struct {
		mode     PathMode
		contains string
	}{
		{PathModeAbsolute, "/home/user/project/src/app/main.rast"},
		{PathModeRelative, "--> src/app/main.rast"},
		{PathModeBasename, "--> main.rast"},
		{PathModeAuto, "--> /home/user/project/src/app/main.rast"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, ShowFile: true, ShowNotes: true})
			out := buf.String()
			if !strings.Contains(out, tt.contains) {
				t.Errorf("expected %q in:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "note: app:main[1:1] did you mean y?") {
				t.Errorf("expected note in:\n%s", out)
			}
		})
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestSummary(t *testing.T) {
	bag, _ := sampleBag(t)
	bag.Add(diag.New(diag.SevWarning, diag.LowTrailingEmptyCase, source.Span{}, "w"))

	var buf bytes.Buffer
	Summary(&buf, bag, false)
	if got := buf.String(); got != "1 error(s), 1 warning(s)\n" {
		t.Fatalf("unexpected summary %q", got)
	}

	buf.Reset()
	Summary(&buf, diag.NewBag(1), false)
	if buf.Len() != 0 {
		t.Fatalf("expected no summary for empty bag, got %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "LOW3001" || d.Location.Module != "app:main" || d.Location.File != "main.rast" || d.Location.Line != 3 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(d.Notes))
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag back to its default; cobra keeps parsed
// values between Execute calls on the same command tree.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--ui=off", "--color=off"}, args...))
	err := rootCmd.Execute()
	stopSession(rootCmd)
	current = nil
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	be.Err(t, os.MkdirAll(filepath.Dir(path), 0o755), nil)
	be.Err(t, os.WriteFile(path, []byte(content), 0o644), nil)
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		err  bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		be.Equal(t, got, tt.want)
		be.Equal(t, err != nil, tt.err)
	}
	be.True(t, shouldUseTUI(uiModeOn))
	be.Equal(t, shouldUseTUI(uiModeOff), false)
}

func TestReadColorMode(t *testing.T) {
	on, err := readColorMode("on")
	be.Err(t, err, nil)
	be.True(t, on)
	on, err = readColorMode("never")
	be.Err(t, err, nil)
	be.Equal(t, on, false)
	_, err = readColorMode("purple")
	be.Err(t, err)
}

func TestOutputNames(t *testing.T) {
	be.Equal(t, outputFile("app:geo:shapes"), "app.geo.shapes.ll")
	be.Equal(t, packOutput("src/main.rast"), "src/main.rast.mp")
}

func TestBuildProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rial.toml"), "[package]\nname = \"app\"\n\n[build]\njobs = 2\n")
	writeFile(t, filepath.Join(root, "src", "geo.rast"), `(unit "app:geo"
  (func "origin" :access public :ret "Int32" (body (return (int 0)))))`)
	writeFile(t, filepath.Join(root, "src", "main.rast"), `(unit "app:main" (using "app:geo")
  (func "main" :ret "Int32" (body (return (mcall "geo" "origin")))))`)

	stdout, stderr, err := execute(t, "build", "--emit-ir", "--timings", root)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stdout, "; module app:main"))
	be.True(t, strings.Contains(stdout, `@"app:geo:origin()"`))
	be.True(t, strings.Contains(stderr, "lower"))

	ll, err := os.ReadFile(filepath.Join(root, "build", "app.main.ll"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(ll), "define i32 @main()"))
	_, err = os.Stat(filepath.Join(root, "build", "app.geo.ll"))
	be.Err(t, err, nil)
}

func TestBuildReportsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rial.toml"), "[package]\nname = \"app\"\n")
	writeFile(t, filepath.Join(root, "src", "main.rast"), `(unit "app:main"
  (func "main" :ret "Int32" (body (return (id "nope" @2:42)))))`)

	_, stderr, err := execute(t, "build", root)
	be.Err(t, err, errDiagnostics)
	be.True(t, strings.Contains(stderr, "app:main[2:42]"))
	_, err = os.Stat(filepath.Join(root, "build", "app.main.ll"))
	be.True(t, os.IsNotExist(err))
}

func TestBuildJSONDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rial.toml"), "[package]\nname = \"app\"\n")
	writeFile(t, filepath.Join(root, "src", "main.rast"), `(unit "app:main"
  (func "f" :ret "Int32" (body)))`)

	_, stderr, err := execute(t, "build", "--diagnostics-format=json", root)
	be.Err(t, err, errDiagnostics)
	be.True(t, strings.Contains(stderr, `"code": "LOW3012"`))
}

func TestBuildWithoutManifest(t *testing.T) {
	_, _, err := execute(t, "build", t.TempDir())
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "rial.toml"))
}

func TestPackThenLower(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "main.rast")
	writeFile(t, in, `(unit "app:main" (func "main" :ret "Int32" (body (return (int 7)))))`)

	_, stderr, err := execute(t, "pack", in)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stderr, "app:main"))

	stdout, _, err := execute(t, "lower", filepath.Join(dir, "main.rast.mp"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stdout, "ret i32 7"))
}

func TestLowerRejectsUnknownFiles(t *testing.T) {
	_, _, err := execute(t, "lower", "main.go")
	be.Err(t, err)
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute(t, "version", "--format", "json")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stdout, `"tool": "rialc"`))
}

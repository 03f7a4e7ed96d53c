package testkit

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestScenarioSuites(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario suites in testdata")
	}
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), ".md")
		t.Run(name, func(t *testing.T) {
			RunFile(t, path)
		})
	}
}

package testkit

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"rial/internal/diag"
	"rial/internal/driver"
)

// RunFile extracts the scenarios of a markdown suite and runs each one as
// a subtest.
func RunFile(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	scenarios, err := ExtractScenarios(data)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			Run(t, s)
		})
	}
}

// Run compiles the scenario units and checks every assertion.
func Run(t *testing.T, s Scenario) {
	t.Helper()
	res, err := Compile(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := CheckResultInvariants(res); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	for _, a := range s.Assertions {
		var failure string
		switch a.Type {
		case AssertDiagnostics:
			failure = checkDiagnostics(res, a)
		case AssertIR:
			failure = checkIR(res, a)
		}
		if failure != "" {
			t.Errorf("line %d: %s", a.Line, failure)
		}
	}
}

// Compile runs the driver over the scenario units.
func Compile(s Scenario) (*driver.Result, error) {
	sources := make([]driver.Source, len(s.Units))
	for i, u := range s.Units {
		sources[i] = driver.Source{Path: fmt.Sprintf("unit%d.rast", i), Content: []byte(u)}
	}
	return driver.Compile(context.Background(), driver.Request{Sources: sources, Jobs: 2})
}

// RenderDiagnostics formats the bag as "<ID> <module>[<pos>]" lines.
func RenderDiagnostics(res *driver.Result) []string {
	var out []string
	for _, d := range res.Bag.Items() {
		out = append(out, fmt.Sprintf("%s %s[%s]", d.Code.ID(), res.FileSet.Module(d.Primary.File), d.Primary.Pos))
	}
	return out
}

func checkDiagnostics(res *driver.Result, a Assertion) string {
	got := RenderDiagnostics(res)
	var want []string
	for _, line := range strings.Split(a.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			want = append(want, line)
		}
	}
	if len(got) != len(want) {
		return fmt.Sprintf("diagnostics:\n got: %q\nwant: %q\n%s", got, want,
			diag.FormatGoldenDiagnostics(res.Bag.Items(), res.FileSet, true))
	}
	for i := range want {
		g := got[i]
		if !strings.Contains(want[i], " ") {
			g, _, _ = strings.Cut(g, " ")
		}
		if g != want[i] {
			return fmt.Sprintf("diagnostic %d: got %q, want %q\n%s", i, got[i], want[i],
				diag.FormatGoldenDiagnostics(res.Bag.Items(), res.FileSet, true))
		}
	}
	return ""
}

// checkIR requires every non-empty line of the fence to occur in the
// module text, each after the previous one.
func checkIR(res *driver.Result, a Assertion) string {
	var text string
	found := false
	for _, u := range res.Units {
		if u.AST != nil && u.AST.Module == a.Module && u.Module != nil {
			text, found = u.Module.String(), true
		}
	}
	if !found {
		return fmt.Sprintf("no lowered module %q", a.Module)
	}
	rest := text
	for _, line := range strings.Split(a.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(rest, line)
		if idx < 0 {
			return fmt.Sprintf("module %s: %q not found in order; IR:\n%s", a.Module, line, text)
		}
		rest = rest[idx+len(line):]
	}
	return ""
}

package testkit

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func suite(parts ...string) []byte {
	return []byte(strings.Join(parts, "\n") + "\n")
}

func TestExtractScenarios(t *testing.T) {
	src := suite(
		"# Suite",
		"",
		"Intro text is ignored.",
		"",
		"## Scenario: first",
		"",
		fence+"rast",
		`(unit "a:one")`,
		fence,
		"",
		fence+"rast",
		`(unit "a:two")`,
		fence,
		"",
		fence+"diagnostics",
		"LOW3001",
		fence,
		"",
		"## Scenario: second",
		"",
		fence+"rast",
		`(unit "a:three")`,
		fence,
		"",
		fence+"ir a:three",
		"define void",
		"ret void",
		fence,
	)
	got, err := ExtractScenarios(src)
	be.Err(t, err, nil)
	be.Equal(t, len(got), 2)

	first := got[0]
	be.Equal(t, first.Name, "first")
	be.Equal(t, first.Line, 5)
	be.Equal(t, first.Units, []string{`(unit "a:one")`, `(unit "a:two")`})
	be.Equal(t, len(first.Assertions), 1)
	be.Equal(t, first.Assertions[0].Type, AssertDiagnostics)
	be.Equal(t, first.Assertions[0].Content, "LOW3001")

	second := got[1]
	be.Equal(t, second.Name, "second")
	be.Equal(t, len(second.Assertions), 1)
	ir := second.Assertions[0]
	be.Equal(t, ir.Type, AssertIR)
	be.Equal(t, ir.Module, "a:three")
	be.Equal(t, ir.Content, "define void\nret void")
}

func TestExtractScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		msg  string
	}{
		{
			name: "fence before any scenario",
			src:  suite(fence+"rast", `(unit "a:b")`, fence),
			msg:  "outside of a scenario",
		},
		{
			name: "unknown fence",
			src:  suite("## Scenario: s", "", fence+"go", "x := 1", fence),
			msg:  `unknown fence "go"`,
		},
		{
			name: "no input",
			src:  suite("## Scenario: s", "", fence+"diagnostics", fence),
			msg:  "has no rast fence",
		},
		{
			name: "no assertions",
			src:  suite("## Scenario: s", "", fence+"rast", `(unit "a:b")`, fence),
			msg:  "has no assertions",
		},
		{
			name: "ir without module",
			src:  suite("## Scenario: s", "", fence+"rast", `(unit "a:b")`, fence, "", fence+"ir", "ret void", fence),
			msg:  "exactly one module name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractScenarios(tt.src)
			be.Err(t, err)
			be.True(t, strings.Contains(err.Error(), tt.msg))
		})
	}
}

func TestUntaggedFencesAreProse(t *testing.T) {
	src := suite(
		"## Scenario: s",
		"",
		fence,
		"just an illustration",
		fence,
		"",
		fence+"rast",
		`(unit "a:b")`,
		fence,
		"",
		fence+"diagnostics",
		fence,
	)
	got, err := ExtractScenarios(src)
	be.Err(t, err, nil)
	be.Equal(t, len(got), 1)
	be.Equal(t, len(got[0].Units), 1)
	be.Equal(t, got[0].Assertions[0].Content, "")
}

// Package testkit runs markdown scenario suites through the driver.
//
// A suite is a markdown file. Every heading "Scenario: <name>" starts a
// scenario; fenced blocks inside it are either inputs or assertions:
//
//	```rast            one unit in text form (repeatable)
//	```diagnostics     expected diagnostics, one per line
//	```ir app:main     lines that must appear, in order, in the module IR
//
// Diagnostic lines are "<ID>" or "<ID> <module>[<line>:<col>]"; an empty
// diagnostics fence expects a clean compilation.
package testkit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	mdast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const scenarioPrefix = "Scenario: "

// AssertionType is the info string of an assertion fence.
type AssertionType string

const (
	AssertDiagnostics AssertionType = "diagnostics"
	AssertIR          AssertionType = "ir"
)

const inputFence = "rast"

// Assertion is one assertion fence.
type Assertion struct {
	Type    AssertionType
	Module  string // for ir fences
	Content string
	Line    int
}

// Scenario is one compilation with its expectations.
type Scenario struct {
	Name       string
	Line       int
	Units      []string
	Assertions []Assertion
}

// ExtractScenarios parses a markdown suite.
func ExtractScenarios(markdown []byte) ([]Scenario, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var out []Scenario
	var cur *Scenario
	flush := func() error {
		if cur == nil {
			return nil
		}
		if err := validate(cur); err != nil {
			return err
		}
		out = append(out, *cur)
		return nil
	}

	err := mdast.Walk(doc, func(node mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if !entering {
			return mdast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *mdast.Heading:
			title := nodeText(n, markdown)
			if !strings.HasPrefix(title, scenarioPrefix) {
				return mdast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return mdast.WalkStop, err
			}
			cur = &Scenario{
				Name: strings.TrimSpace(strings.TrimPrefix(title, scenarioPrefix)),
				Line: lineOf(n, markdown),
			}
			return mdast.WalkSkipChildren, nil

		case *mdast.FencedCodeBlock:
			info := fenceInfo(n, markdown)
			line := lineOf(n, markdown)
			if len(info) == 0 {
				return mdast.WalkContinue, nil
			}
			if cur == nil {
				return mdast.WalkStop, fmt.Errorf("line %d: %s fence outside of a scenario", line, info[0])
			}
			content := fenceContent(n, markdown)
			switch AssertionType(info[0]) {
			case inputFence:
				cur.Units = append(cur.Units, content)
			case AssertDiagnostics:
				cur.Assertions = append(cur.Assertions, Assertion{Type: AssertDiagnostics, Content: content, Line: line})
			case AssertIR:
				if len(info) != 2 {
					return mdast.WalkStop, fmt.Errorf("line %d: ir fence needs exactly one module name", line)
				}
				cur.Assertions = append(cur.Assertions, Assertion{Type: AssertIR, Module: info[1], Content: content, Line: line})
			default:
				return mdast.WalkStop, fmt.Errorf("line %d: unknown fence %q in scenario %q", line, info[0], cur.Name)
			}
		}
		return mdast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(s *Scenario) error {
	if len(s.Units) == 0 {
		return fmt.Errorf("line %d: scenario %q has no rast fence", s.Line, s.Name)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("line %d: scenario %q has no assertions", s.Line, s.Name)
	}
	return nil
}

func nodeText(node mdast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = mdast.Walk(node, func(n mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if t, ok := n.(*mdast.Text); ok && entering {
			buf.Write(t.Segment.Value(src))
		}
		return mdast.WalkContinue, nil
	})
	return buf.String()
}

func fenceInfo(n *mdast.FencedCodeBlock, src []byte) []string {
	if n.Info == nil {
		return nil
	}
	return strings.Fields(string(n.Info.Segment.Value(src)))
}

func fenceContent(n *mdast.FencedCodeBlock, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// lineOf counts newlines before the node's first line. Headings and
// fences report the line of their content.
func lineOf(n mdast.Node, src []byte) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	return bytes.Count(src[:min(start, len(src))], []byte("\n")) + 1
}

package source

import (
	"fmt"
)

// Pos is a position in the original rial source as recorded by the parser.
// Line and Col are 1-based; zero means unknown.
type Pos struct {
	Line uint32
	Col  uint32
}

// NoPos is the zero position.
var NoPos = Pos{}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p precedes other in reading order.
func (p Pos) Before(other Pos) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

// Span locates a diagnostic: the unit file and the source position inside it.
type Span struct {
	File FileID
	Pos  Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%d@%s", s.File, s.Pos)
}

// At is a shorthand for building a span in file f.
func At(f FileID, p Pos) Span {
	return Span{File: f, Pos: p}
}

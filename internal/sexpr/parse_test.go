package sexpr

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseNested(t *testing.T) {
	nodes, err := Parse([]byte(`; header
(unit "app:main"
  (func "f" :ret "Int32" @3:1 (body (return (int 1)))))`))
	be.Err(t, err, nil)
	be.Equal(t, len(nodes), 1)

	unit := nodes[0]
	be.Equal(t, unit.Head(), "unit")
	be.Equal(t, unit.Args()[0].Kind, NodeString)
	be.Equal(t, unit.Args()[0].Text, "app:main")

	fn := unit.Args()[1]
	be.Equal(t, fn.Head(), "func")
	be.True(t, fn.Args()[1].IsAtom(":ret"))
	be.True(t, fn.Args()[3].IsAtom("@3:1"))
	be.Equal(t, fn.String(), `(func "f" :ret "Int32" @3:1 (body (return (int 1))))`)
}

func TestParseOffsets(t *testing.T) {
	nodes, err := Parse([]byte("(a\n  (b \"c\"))"))
	be.Err(t, err, nil)
	b := nodes[0].List[1]
	be.Equal(t, b.Off, uint32(5))
	be.Equal(t, b.List[1].Off, uint32(8))
}

func TestParseEscapes(t *testing.T) {
	nodes, err := Parse([]byte(`"a\n\"b\"\\"`))
	be.Err(t, err, nil)
	be.Equal(t, nodes[0].Text, "a\n\"b\"\\")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src string
		off uint32
	}{
		{"(a (b)", 0},
		{"a)", 1},
		{`(a "unterminated)`, 3},
		{`"bad \q"`, 5},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.src))
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%q: expected SyntaxError, got %v", tt.src, err)
		}
		be.Equal(t, se.Off, tt.off)
	}
}

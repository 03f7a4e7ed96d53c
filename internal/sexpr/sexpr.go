// Package sexpr reads the parenthesized text form used for hand-written
// compilation units (.rast files).
//
// The grammar is deliberately small: lists in parentheses, double-quoted
// strings with the usual backslash escapes, and bare atoms (everything else
// up to whitespace or a paren). ';' starts a comment running to end of line.
package sexpr

import (
	"fmt"
	"strings"
)

// NodeKind distinguishes node shapes.
type NodeKind uint8

const (
	// NodeAtom is a bare token: symbol, number, keyword or position marker.
	NodeAtom NodeKind = iota
	// NodeString is a quoted string with escapes already resolved.
	NodeString
	// NodeList is a parenthesized list.
	NodeList
)

func (k NodeKind) String() string {
	switch k {
	case NodeAtom:
		return "atom"
	case NodeString:
		return "string"
	case NodeList:
		return "list"
	default:
		return "unknown"
	}
}

// Node is one parsed element. Off is the byte offset of its first character.
type Node struct {
	Kind NodeKind
	Text string
	List []*Node
	Off  uint32
}

// IsAtom reports whether n is the bare atom s.
func (n *Node) IsAtom(s string) bool {
	return n != nil && n.Kind == NodeAtom && n.Text == s
}

// Head returns the leading atom of a list, or "" when there is none.
func (n *Node) Head() string {
	if n == nil || n.Kind != NodeList || len(n.List) == 0 || n.List[0].Kind != NodeAtom {
		return ""
	}
	return n.List[0].Text
}

// Args returns list elements after the head.
func (n *Node) Args() []*Node {
	if n == nil || n.Kind != NodeList || len(n.List) == 0 {
		return nil
	}
	return n.List[1:]
}

func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Kind {
	case NodeAtom:
		sb.WriteString(n.Text)
	case NodeString:
		fmt.Fprintf(sb, "%q", n.Text)
	case NodeList:
		sb.WriteByte('(')
		for i, c := range n.List {
			if i > 0 {
				sb.WriteByte(' ')
			}
			c.write(sb)
		}
		sb.WriteByte(')')
	}
}

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Off uint32
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sexpr: offset %d: %s", e.Off, e.Msg)
}

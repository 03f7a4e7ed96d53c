package sexpr

import (
	"strings"

	"fortio.org/safecast"
)

type parser struct {
	src []byte
	pos int
}

// Parse reads all top-level nodes from src.
func Parse(src []byte) ([]*Node, error) {
	if _, err := safecast.Conv[uint32](len(src)); err != nil {
		return nil, &SyntaxError{Msg: "input too large"}
	}
	p := &parser{src: src}
	var out []*Node
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return out, nil
		}
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}

func (p *parser) off() uint32 {
	return uint32(p.pos) // #nosec G115 -- длина проверена в Parse
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ';':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) node() (*Node, error) {
	start := p.off()
	switch p.src[p.pos] {
	case '(':
		p.pos++
		list := &Node{Kind: NodeList, Off: start}
		for {
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, &SyntaxError{Off: start, Msg: "unclosed list"}
			}
			if p.src[p.pos] == ')' {
				p.pos++
				return list, nil
			}
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			list.List = append(list.List, child)
		}
	case ')':
		return nil, &SyntaxError{Off: start, Msg: "unexpected ')'"}
	case '"':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeString, Text: s, Off: start}, nil
	default:
		begin := p.pos
		for p.pos < len(p.src) && !isDelim(p.src[p.pos]) {
			p.pos++
		}
		return &Node{Kind: NodeAtom, Text: string(p.src[begin:p.pos]), Off: start}, nil
	}
}

func (p *parser) str() (string, error) {
	start := p.off()
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", &SyntaxError{Off: start, Msg: "unterminated string"}
			}
			esc := p.src[p.pos+1]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '"':
				sb.WriteByte(esc)
			default:
				return "", &SyntaxError{Off: p.off(), Msg: "unknown escape \\" + string(esc)}
			}
			p.pos += 2
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", &SyntaxError{Off: start, Msg: "unterminated string"}
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '"', ';', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

package ast

import (
	"strings"

	"rial/internal/source"
)

// ExprKind enumerates expression kinds. Call forms are distinct kinds so
// lowering never has to guess the shape of a call from its children.
type ExprKind uint8

const (
	// ExprLiteral represents int, float, bool, char and string literals.
	ExprLiteral ExprKind = iota
	// ExprPath represents a possibly dotted variable reference (a.b.c).
	ExprPath
	// ExprUnary represents unary operators (-, not).
	ExprUnary
	// ExprBinary represents arithmetic, comparison and logical operators.
	ExprBinary
	// ExprCast represents an explicit conversion to a named type.
	ExprCast
	// ExprTernary represents `cond ? a : b`.
	ExprTernary
	// ExprCall represents a call by (possibly namespace-qualified) name.
	ExprCall
	// ExprMethodCall represents a call with an explicit receiver path.
	ExprMethodCall
	// ExprConstruct represents a constructor call that allocates storage.
	ExprConstruct
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprPath:
		return "Path"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprCast:
		return "Cast"
	case ExprTernary:
		return "Ternary"
	case ExprCall:
		return "Call"
	case ExprMethodCall:
		return "MethodCall"
	case ExprConstruct:
		return "Construct"
	default:
		return "Unknown"
	}
}

// Expr is an expression node.
type Expr struct {
	Kind ExprKind
	Pos  source.Pos
	Data ExprData // Kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
	LiteralChar
	LiteralString
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralInt:
		return "int"
	case LiteralFloat:
		return "float"
	case LiteralBool:
		return "bool"
	case LiteralChar:
		return "char"
	case LiteralString:
		return "str"
	default:
		return "unknown"
	}
}

// LiteralData holds data for ExprLiteral. Type is an optional explicit
// type suffix ("Int64", "Float32"); empty means the default for Kind.
type LiteralData struct {
	Kind   LiteralKind `msgpack:"kind"`
	Int    int64       `msgpack:"int,omitempty"`
	Float  float64     `msgpack:"float,omitempty"`
	Bool   bool        `msgpack:"bool,omitempty"`
	String string      `msgpack:"str,omitempty"` // строка или символ
	Type   string      `msgpack:"type,omitempty"`
}

func (LiteralData) exprData() {}

// PathData holds data for ExprPath.
type PathData struct {
	Segments []string `msgpack:"segs"`
}

func (PathData) exprData() {}

// Dotted joins the path back with dots.
func (d PathData) Dotted() string {
	return strings.Join(d.Segments, ".")
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "neg"
	case UnaryNot:
		return "not"
	default:
		return "?"
	}
}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnaryOp `msgpack:"op"`
	Operand *Expr   `msgpack:"x"`
}

func (UnaryData) exprData() {}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNe
	BinAnd // короткое замыкание
	BinOr  // короткое замыкание
)

var binaryOpText = [...]string{
	BinAdd: "+",
	BinSub: "-",
	BinMul: "*",
	BinDiv: "/",
	BinRem: "%",
	BinLt:  "<",
	BinGt:  ">",
	BinLe:  "<=",
	BinGe:  ">=",
	BinEq:  "==",
	BinNe:  "!=",
	BinAnd: "and",
	BinOr:  "or",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps operator text onto BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, text := range binaryOpText {
		if text == s {
			return BinaryOp(i), true // #nosec G115 -- таблица маленькая
		}
	}
	return 0, false
}

// IsComparison reports whether op yields a boolean from two operands.
func (op BinaryOp) IsComparison() bool {
	return op >= BinLt && op <= BinNe
}

// IsLogical reports whether op short-circuits.
func (op BinaryOp) IsLogical() bool {
	return op == BinAnd || op == BinOr
}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinaryOp `msgpack:"op"`
	Left  *Expr    `msgpack:"l"`
	Right *Expr    `msgpack:"r"`
}

func (BinaryData) exprData() {}

// CastData holds data for ExprCast.
type CastData struct {
	Type  string `msgpack:"type"`
	Value *Expr  `msgpack:"x"`
}

func (CastData) exprData() {}

// TernaryData holds data for ExprTernary.
type TernaryData struct {
	Cond *Expr `msgpack:"cond"`
	Then *Expr `msgpack:"then"`
	Else *Expr `msgpack:"else"`
}

func (TernaryData) exprData() {}

// CallData holds data for ExprCall. Name may carry a namespace qualifier
// ("geo:distance"); a name that resolves to a struct is a constructor call.
type CallData struct {
	Name string  `msgpack:"name"`
	Args []*Expr `msgpack:"args,omitempty"`
}

func (CallData) exprData() {}

// MethodCallData holds data for ExprMethodCall. Receiver is a dotted path
// to a variable; it becomes the implicit first argument.
type MethodCallData struct {
	Receiver []string `msgpack:"recv"`
	Name     string   `msgpack:"name"`
	Args     []*Expr  `msgpack:"args,omitempty"`
}

func (MethodCallData) exprData() {}

// ConstructData holds data for ExprConstruct.
type ConstructData struct {
	Struct string  `msgpack:"struct"`
	Args   []*Expr `msgpack:"args,omitempty"`
}

func (ConstructData) exprData() {}

// Helpers used by readers and tests.

func NewInt(pos source.Pos, v int64) *Expr {
	return &Expr{Kind: ExprLiteral, Pos: pos, Data: LiteralData{Kind: LiteralInt, Int: v}}
}

func NewBinary(pos source.Pos, op BinaryOp, l, r *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Pos: pos, Data: BinaryData{Op: op, Left: l, Right: r}}
}

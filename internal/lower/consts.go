package lower

import (
	"math"
	"unicode/utf8"

	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/types"
)

// constVal is a folded compile-time value. Integers, chars and Booleans
// live in i, floats in f, CString text in s.
type constVal struct {
	typ *types.Type
	i   int64
	f   float64
	s   string
}

// folder evaluates constant expressions: literals combined with unary,
// binary, cast and ternary operators.
type folder struct {
	reporter
	structs types.StructLookup
}

func (c folder) fold(e *ast.Expr) (constVal, bool) {
	if e == nil {
		return constVal{}, false
	}
	switch e.Kind {
	case ast.ExprLiteral:
		data, ok := e.Data.(ast.LiteralData)
		if !ok {
			return constVal{}, false
		}
		return c.literal(e, data)
	case ast.ExprUnary:
		data, ok := e.Data.(ast.UnaryData)
		if !ok {
			return constVal{}, false
		}
		x, ok := c.fold(data.Operand)
		if !ok {
			return constVal{}, false
		}
		switch {
		case data.Op == ast.UnaryNot && x.typ.IsBool():
			x.i ^= 1
			return x, true
		case data.Op == ast.UnaryNeg && x.typ.IsFloat():
			x.f = -x.f
			return x, true
		case data.Op == ast.UnaryNeg && x.typ.IsInteger():
			x.i = wrap(x.typ, -x.i)
			return x, true
		}
		return constVal{}, false
	case ast.ExprBinary:
		data, ok := e.Data.(ast.BinaryData)
		if !ok {
			return constVal{}, false
		}
		l, ok := c.fold(data.Left)
		if !ok {
			return constVal{}, false
		}
		r, ok := c.fold(data.Right)
		if !ok {
			return constVal{}, false
		}
		return foldBinary(data.Op, l, r)
	case ast.ExprCast:
		data, ok := e.Data.(ast.CastData)
		if !ok {
			return constVal{}, false
		}
		x, ok := c.fold(data.Value)
		if !ok {
			return constVal{}, false
		}
		to, err := types.Resolve(data.Type, c.structs)
		if err != nil {
			return constVal{}, false
		}
		return convertConst(x, to)
	case ast.ExprTernary:
		data, ok := e.Data.(ast.TernaryData)
		if !ok {
			return constVal{}, false
		}
		cond, ok := c.fold(data.Cond)
		if !ok || !cond.typ.IsBool() {
			return constVal{}, false
		}
		if cond.i != 0 {
			return c.fold(data.Then)
		}
		return c.fold(data.Else)
	}
	return constVal{}, false
}

func (c folder) literal(e *ast.Expr, data ast.LiteralData) (constVal, bool) {
	switch data.Kind {
	case ast.LiteralInt:
		t := types.IntLiteralType(data.Int)
		if data.Type != "" {
			var err error
			if t, err = types.Resolve(data.Type, nil); err != nil {
				c.errorf(diag.LowUnknownType, e.Pos, "unknown literal type %q", data.Type)
				return constVal{}, false
			}
		}
		if t.IsFloat() {
			return constVal{typ: t, f: float64(data.Int)}, true
		}
		if !t.IsInteger() {
			c.errorf(diag.LowInvalidOperand, e.Pos, "integer literal cannot have type %s", t)
			return constVal{}, false
		}
		if !types.FitsInt(t, data.Int) {
			c.errorf(diag.LowLiteralOverflow, e.Pos, "literal %d overflows %s", data.Int, t)
			return constVal{}, false
		}
		return constVal{typ: t, i: data.Int}, true
	case ast.LiteralFloat:
		t := types.Float64
		if data.Type != "" {
			rt, err := types.Resolve(data.Type, nil)
			if err != nil || !rt.IsFloat() {
				c.errorf(diag.LowUnknownType, e.Pos, "invalid float literal type %q", data.Type)
				return constVal{}, false
			}
			t = rt
		}
		if t == types.Float32 && math.Abs(data.Float) > math.MaxFloat32 {
			c.errorf(diag.LowLiteralOverflow, e.Pos, "literal %g overflows %s", data.Float, t)
			return constVal{}, false
		}
		return constVal{typ: t, f: data.Float}, true
	case ast.LiteralBool:
		v := int64(0)
		if data.Bool {
			v = 1
		}
		return constVal{typ: types.Boolean, i: v}, true
	case ast.LiteralChar:
		r, size := utf8.DecodeRuneInString(data.String)
		if size == 0 || r > math.MaxUint8 {
			c.errorf(diag.LowLiteralOverflow, e.Pos, "character %q does not fit Char", data.String)
			return constVal{}, false
		}
		return constVal{typ: types.Char, i: int64(r)}, true
	case ast.LiteralString:
		return constVal{typ: types.CString, s: data.String}, true
	}
	return constVal{}, false
}

// wrap truncates v to the width of an integer type with two's complement
// semantics, the way the backend would.
func wrap(t *types.Type, v int64) int64 {
	if !t.IsInteger() || t.Width >= types.Width64 {
		return v
	}
	bits := uint(t.Width)
	mask := int64(1)<<bits - 1
	v &= mask
	if t.IsSigned() && v&(int64(1)<<(bits-1)) != 0 {
		v -= int64(1) << bits
	}
	return v
}

func convertConst(x constVal, to *types.Type) (constVal, bool) {
	if _, err := types.Cast(x.typ, to); err != nil {
		return constVal{}, false
	}
	switch {
	case x.typ.IsFloat() && to.IsInteger():
		return constVal{typ: to, i: wrap(to, int64(x.f))}, true
	case (x.typ.IsInteger() || x.typ.IsBool()) && to.IsFloat():
		if x.typ.IsSigned() {
			return constVal{typ: to, f: float64(x.i)}, true
		}
		return constVal{typ: to, f: float64(uint64(x.i))}, true
	case x.typ.IsFloat() && to.IsFloat():
		if to == types.Float32 {
			return constVal{typ: to, f: float64(float32(x.f))}, true
		}
		return constVal{typ: to, f: x.f}, true
	case to.IsInteger():
		return constVal{typ: to, i: wrap(to, x.i)}, true
	}
	x.typ = to
	return x, true
}

func foldBinary(op ast.BinaryOp, l, r constVal) (constVal, bool) {
	common, ok := types.BinaryOperands(op, l.typ, r.typ)
	if !ok {
		return constVal{}, false
	}
	if l, ok = convertConst(l, common); !ok {
		return constVal{}, false
	}
	if r, ok = convertConst(r, common); !ok {
		return constVal{}, false
	}
	boolean := func(b bool) (constVal, bool) {
		if b {
			return constVal{typ: types.Boolean, i: 1}, true
		}
		return constVal{typ: types.Boolean}, true
	}
	if common.IsFloat() {
		switch op {
		case ast.BinAdd:
			return constVal{typ: common, f: l.f + r.f}, true
		case ast.BinSub:
			return constVal{typ: common, f: l.f - r.f}, true
		case ast.BinMul:
			return constVal{typ: common, f: l.f * r.f}, true
		case ast.BinDiv:
			return constVal{typ: common, f: l.f / r.f}, true
		case ast.BinRem:
			return constVal{typ: common, f: math.Mod(l.f, r.f)}, true
		case ast.BinLt:
			return boolean(l.f < r.f)
		case ast.BinGt:
			return boolean(l.f > r.f)
		case ast.BinLe:
			return boolean(l.f <= r.f)
		case ast.BinGe:
			return boolean(l.f >= r.f)
		case ast.BinEq:
			return boolean(l.f == r.f)
		case ast.BinNe:
			return boolean(l.f != r.f)
		}
		return constVal{}, false
	}
	less := l.i < r.i
	if !common.IsSigned() {
		less = uint64(l.i) < uint64(r.i)
	}
	switch op {
	case ast.BinAdd:
		return constVal{typ: common, i: wrap(common, l.i+r.i)}, true
	case ast.BinSub:
		return constVal{typ: common, i: wrap(common, l.i-r.i)}, true
	case ast.BinMul:
		return constVal{typ: common, i: wrap(common, l.i*r.i)}, true
	case ast.BinDiv, ast.BinRem:
		if r.i == 0 {
			return constVal{}, false
		}
		var v int64
		switch {
		case op == ast.BinDiv && common.IsSigned():
			v = l.i / r.i
		case op == ast.BinDiv:
			v = int64(uint64(l.i) / uint64(r.i))
		case common.IsSigned():
			v = l.i % r.i
		default:
			v = int64(uint64(l.i) % uint64(r.i))
		}
		return constVal{typ: common, i: wrap(common, v)}, true
	case ast.BinLt:
		return boolean(less)
	case ast.BinGt:
		return boolean(!less && l.i != r.i)
	case ast.BinLe:
		return boolean(less || l.i == r.i)
	case ast.BinGe:
		return boolean(!less)
	case ast.BinEq:
		return boolean(l.i == r.i)
	case ast.BinNe:
		return boolean(l.i != r.i)
	case ast.BinAnd:
		return boolean(l.i != 0 && r.i != 0)
	case ast.BinOr:
		return boolean(l.i != 0 || r.i != 0)
	}
	return constVal{}, false
}

// scalarConstant converts a non-string folded value into a backend
// constant of its own type.
func scalarConstant(v constVal) (constant.Constant, bool) {
	switch {
	case v.typ.IsBool():
		return constant.NewBool(v.i != 0), true
	case v.typ.IsInteger():
		return constant.NewInt(intIR(v.typ), v.i), true
	case v.typ.IsFloat():
		ft, ok := v.typ.IR.(*irtypes.FloatType)
		if !ok {
			return nil, false
		}
		return constant.NewFloat(ft, v.f), true
	}
	return nil, false
}

func intIR(t *types.Type) *irtypes.IntType {
	it, ok := t.IR.(*irtypes.IntType)
	if !ok {
		panic("lower: " + t.Name + " is not an integer type")
	}
	return it
}

package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	llvalue "github.com/llir/llvm/ir/value"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/types"
)

// lowerExpr lowers e at the cursor. A false result means the expression
// was discarded after its diagnostic was reported.
func (fl *funcLowerer) lowerExpr(e *ast.Expr) (value, bool) {
	if e == nil {
		return value{}, false
	}
	switch e.Kind {
	case ast.ExprLiteral:
		data, ok := e.Data.(ast.LiteralData)
		if !ok {
			break
		}
		return fl.lowerLiteral(e, data)
	case ast.ExprPath:
		data, ok := e.Data.(ast.PathData)
		if !ok {
			break
		}
		return fl.place(data.Segments, e.Pos)
	case ast.ExprUnary:
		data, ok := e.Data.(ast.UnaryData)
		if !ok {
			break
		}
		return fl.lowerUnary(e, data)
	case ast.ExprBinary:
		data, ok := e.Data.(ast.BinaryData)
		if !ok {
			break
		}
		if data.Op.IsLogical() {
			return fl.lowerLogical(e, data)
		}
		return fl.lowerBinary(e, data)
	case ast.ExprCast:
		data, ok := e.Data.(ast.CastData)
		if !ok {
			break
		}
		return fl.lowerCast(e, data)
	case ast.ExprTernary:
		data, ok := e.Data.(ast.TernaryData)
		if !ok {
			break
		}
		return fl.lowerTernary(e, data)
	case ast.ExprCall:
		data, ok := e.Data.(ast.CallData)
		if !ok {
			break
		}
		return fl.lowerCall(e, data)
	case ast.ExprMethodCall:
		data, ok := e.Data.(ast.MethodCallData)
		if !ok {
			break
		}
		return fl.lowerMethodCall(e, data)
	case ast.ExprConstruct:
		data, ok := e.Data.(ast.ConstructData)
		if !ok {
			break
		}
		return fl.lowerConstructByName(e, data.Struct, data.Args)
	}
	panic(fmt.Sprintf("lower: unexpected expression %s with payload %T", e.Kind, e.Data))
}

func (fl *funcLowerer) lowerLiteral(e *ast.Expr, data ast.LiteralData) (value, bool) {
	f := folder{reporter: fl.reporter}
	cv, ok := f.literal(e, data)
	if !ok {
		return value{}, false
	}
	if cv.typ.Kind == types.KindCString {
		return value{v: fl.stringConst(cv.s), typ: types.CString}, true
	}
	c, ok := scalarConstant(cv)
	if !ok {
		return value{}, false
	}
	return value{v: c, typ: cv.typ, lit: data.Kind == ast.LiteralInt && data.Type == ""}, true
}

func (fl *funcLowerer) lowerUnary(e *ast.Expr, data ast.UnaryData) (value, bool) {
	x, ok := fl.lowerExpr(data.Operand)
	if !ok {
		return value{}, false
	}
	cur := fl.bb.Cur()
	switch {
	case data.Op == ast.UnaryNot && x.typ.IsBool():
		return value{v: cur.NewXor(fl.rvalue(x), constant.True), typ: types.Boolean}, true
	case data.Op == ast.UnaryNeg && x.typ.IsFloat():
		return value{v: cur.NewFNeg(fl.rvalue(x)), typ: x.typ}, true
	case data.Op == ast.UnaryNeg && x.typ.IsInteger():
		return value{v: cur.NewSub(constant.NewInt(intIR(x.typ), 0), fl.rvalue(x)), typ: x.typ}, true
	}
	fl.errorf(diag.LowInvalidOperand, e.Pos, "operator %s is not defined for %s", data.Op, x.typ)
	return value{}, false
}

// lowerBinary emits exactly one instruction for operands of equal type;
// mismatched numeric operands are first converted to their common type.
func (fl *funcLowerer) lowerBinary(e *ast.Expr, data ast.BinaryData) (value, bool) {
	l, ok := fl.lowerExpr(data.Left)
	if !ok {
		return value{}, false
	}
	r, ok := fl.lowerExpr(data.Right)
	if !ok {
		return value{}, false
	}
	common, ok := types.BinaryOperands(data.Op, l.typ, r.typ)
	if !ok {
		fl.errorf(diag.LowInvalidOperand, e.Pos, "operator %s is not defined for %s and %s", data.Op, l.typ, r.typ)
		return value{}, false
	}
	lv, ok := fl.coerce(l, common, data.Left.Pos)
	if !ok {
		return value{}, false
	}
	rv, ok := fl.coerce(r, common, data.Right.Pos)
	if !ok {
		return value{}, false
	}
	if data.Op.IsComparison() {
		return value{v: fl.compare(data.Op, common, lv, rv), typ: types.Boolean}, true
	}
	return value{v: fl.arith(data.Op, common, lv, rv), typ: common}, true
}

func (fl *funcLowerer) arith(op ast.BinaryOp, t *types.Type, l, r llvalue.Value) llvalue.Value {
	cur := fl.bb.Cur()
	if t.IsFloat() {
		switch op {
		case ast.BinAdd:
			return cur.NewFAdd(l, r)
		case ast.BinSub:
			return cur.NewFSub(l, r)
		case ast.BinMul:
			return cur.NewFMul(l, r)
		case ast.BinDiv:
			return cur.NewFDiv(l, r)
		case ast.BinRem:
			return cur.NewFRem(l, r)
		}
	} else {
		switch op {
		case ast.BinAdd:
			return cur.NewAdd(l, r)
		case ast.BinSub:
			return cur.NewSub(l, r)
		case ast.BinMul:
			return cur.NewMul(l, r)
		case ast.BinDiv:
			if t.IsSigned() {
				return cur.NewSDiv(l, r)
			}
			return cur.NewUDiv(l, r)
		case ast.BinRem:
			if t.IsSigned() {
				return cur.NewSRem(l, r)
			}
			return cur.NewURem(l, r)
		}
	}
	panic(fmt.Sprintf("lower: %s is not arithmetic", op))
}

var (
	signedPreds = map[ast.BinaryOp]enum.IPred{
		ast.BinLt: enum.IPredSLT, ast.BinGt: enum.IPredSGT,
		ast.BinLe: enum.IPredSLE, ast.BinGe: enum.IPredSGE,
		ast.BinEq: enum.IPredEQ, ast.BinNe: enum.IPredNE,
	}
	unsignedPreds = map[ast.BinaryOp]enum.IPred{
		ast.BinLt: enum.IPredULT, ast.BinGt: enum.IPredUGT,
		ast.BinLe: enum.IPredULE, ast.BinGe: enum.IPredUGE,
		ast.BinEq: enum.IPredEQ, ast.BinNe: enum.IPredNE,
	}
	floatPreds = map[ast.BinaryOp]enum.FPred{
		ast.BinLt: enum.FPredOLT, ast.BinGt: enum.FPredOGT,
		ast.BinLe: enum.FPredOLE, ast.BinGe: enum.FPredOGE,
		ast.BinEq: enum.FPredOEQ, ast.BinNe: enum.FPredUNE,
	}
)

func (fl *funcLowerer) compare(op ast.BinaryOp, t *types.Type, l, r llvalue.Value) llvalue.Value {
	cur := fl.bb.Cur()
	switch {
	case t.IsFloat():
		return cur.NewFCmp(floatPreds[op], l, r)
	case t.IsSigned():
		return cur.NewICmp(signedPreds[op], l, r)
	default:
		return cur.NewICmp(unsignedPreds[op], l, r)
	}
}

// lowerLogical short-circuits `and`/`or`: the right operand runs in its
// own block and a phi joins the constant from the left edge with it.
func (fl *funcLowerer) lowerLogical(e *ast.Expr, data ast.BinaryData) (value, bool) {
	bb := fl.bb
	l, ok := fl.condition(data.Left)
	if !ok {
		return value{}, false
	}
	name := "and"
	short := constant.False
	if data.Op == ast.BinOr {
		name, short = "or", constant.True
	}
	left := bb.Cur()
	rhs := bb.NewBlock(name + ".rhs")
	end := bb.NewBlock(name + ".end")
	if data.Op == ast.BinAnd {
		_ = bb.CondJump(l.v, rhs, end)
	} else {
		_ = bb.CondJump(l.v, end, rhs)
	}

	bb.Enter(rhs)
	r, ok := fl.condition(data.Right)
	if !ok {
		// правая часть выброшена, но блок должен быть закрыт
		_ = bb.Jump(end)
		bb.Enter(end)
		return value{}, false
	}
	right := bb.Cur()
	_ = bb.Jump(end)

	bb.Enter(end)
	phi := end.NewPhi(ir.NewIncoming(short, left), ir.NewIncoming(r.v, right))
	return value{v: phi, typ: types.Boolean}, true
}

func (fl *funcLowerer) lowerCast(e *ast.Expr, data ast.CastData) (value, bool) {
	x, ok := fl.lowerExpr(data.Value)
	if !ok {
		return value{}, false
	}
	to, ok := fl.resolveType(data.Type, e.Pos)
	if !ok {
		return value{}, false
	}
	op, err := types.Cast(x.typ, to)
	if err != nil {
		fl.errorf(diag.LowInvalidCast, e.Pos, "cannot cast %s to %s", x.typ, to)
		return value{}, false
	}
	v := types.Apply(fl.bb.Cur(), op, fl.rvalue(x), to)
	return value{v: v, typ: to, addr: to.IsStruct()}, true
}

// lowerTernary evaluates each branch in a block of its own and joins the
// results with a phi keyed on the block each branch ended in.
func (fl *funcLowerer) lowerTernary(e *ast.Expr, data ast.TernaryData) (value, bool) {
	bb := fl.bb
	cond, condOK := fl.condition(data.Cond)
	if !condOK {
		cond.v = constant.False
	}
	thenB := bb.NewBlock("ternary.then")
	elseB := bb.NewBlock("ternary.else")
	end := bb.NewBlock("ternary.end")
	_ = bb.CondJump(cond.v, thenB, elseB)

	bb.Enter(thenB)
	tx, tok := fl.lowerExpr(data.Then)
	thenEnd := bb.Cur()
	bb.Enter(elseB)
	ex, eok := fl.lowerExpr(data.Else)
	elseEnd := bb.Cur()

	var common *types.Type
	if tok && eok {
		switch {
		case tx.typ == ex.typ:
			common = tx.typ
		default:
			common, _ = types.Promote(tx.typ, ex.typ)
		}
		if common == nil || common.IsVoid() {
			fl.errorf(diag.LowInvalidOperand, e.Pos, "ternary branches have incompatible types %s and %s", tx.typ, ex.typ)
		}
	}
	if common == nil || common.IsVoid() {
		for _, blk := range [...]*ir.Block{thenEnd, elseEnd} {
			bb.Enter(blk)
			bb.JumpIfNotExists(end)
		}
		bb.Enter(end)
		return value{}, false
	}

	bb.Enter(thenEnd)
	tv, tok := fl.coerce(tx, common, data.Then.Pos)
	thenEnd = bb.Cur()
	_ = bb.Jump(end)
	bb.Enter(elseEnd)
	ev, eok := fl.coerce(ex, common, data.Else.Pos)
	elseEnd = bb.Cur()
	_ = bb.Jump(end)

	bb.Enter(end)
	if !condOK || !tok || !eok {
		return value{}, false
	}
	phi := end.NewPhi(ir.NewIncoming(tv, thenEnd), ir.NewIncoming(ev, elseEnd))
	return value{v: phi, typ: common, addr: common.IsStruct()}, true
}

package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"rial/internal/ast"
	"rial/internal/blocks"
	"rial/internal/diag"
	"rial/internal/symbols"
	"rial/internal/types"
)

// lowerStmts lowers a statement list. Statements after a terminator are
// reported once and skipped.
func (fl *funcLowerer) lowerStmts(stmts []*ast.Stmt) {
	for _, st := range stmts {
		if st == nil {
			continue
		}
		if fl.bb.Terminated() {
			fl.errorf(diag.LowUnreachableStatement, st.Pos, "unreachable statement")
			return
		}
		fl.lowerStmt(st)
	}
}

func (fl *funcLowerer) lowerStmt(st *ast.Stmt) {
	switch st.Kind {
	case ast.StmtExpr:
		if data, ok := st.Data.(ast.ExprStmtData); ok {
			fl.lowerExpr(data.Expr)
		}
	case ast.StmtVar:
		if data, ok := st.Data.(ast.VarData); ok {
			fl.lowerVar(st, data)
		}
	case ast.StmtAssign:
		if data, ok := st.Data.(ast.AssignData); ok {
			fl.lowerAssign(st, data.Target, data.Value)
		}
	case ast.StmtCompoundAssign:
		if data, ok := st.Data.(ast.CompoundAssignData); ok {
			target := &ast.Expr{Kind: ast.ExprPath, Pos: st.Pos, Data: ast.PathData{Segments: data.Target}}
			fl.lowerAssign(st, data.Target, ast.NewBinary(st.Pos, data.Op, target, data.Value))
		}
	case ast.StmtIncDec:
		if data, ok := st.Data.(ast.IncDecData); ok {
			fl.lowerIncDec(st, data)
		}
	case ast.StmtReturn:
		if data, ok := st.Data.(ast.ReturnData); ok {
			fl.lowerReturn(st, data)
		}
	case ast.StmtBreak:
		target, ok := fl.bb.BreakTarget()
		if !ok {
			fl.errorf(diag.LowMisplacedControlFlow, st.Pos, "break outside of a loop or switch")
			return
		}
		_ = fl.bb.Jump(target)
	case ast.StmtContinue:
		target, ok := fl.bb.ContinueTarget()
		if !ok {
			fl.errorf(diag.LowMisplacedControlFlow, st.Pos, "continue outside of a loop")
			return
		}
		_ = fl.bb.Jump(target)
	case ast.StmtIf:
		if data, ok := st.Data.(ast.IfData); ok {
			fl.lowerIf(data)
		}
	case ast.StmtWhile:
		if data, ok := st.Data.(ast.WhileData); ok {
			fl.lowerWhile(data)
		}
	case ast.StmtLoop:
		if data, ok := st.Data.(ast.LoopData); ok {
			fl.lowerLoop(data)
		}
	case ast.StmtFor:
		if data, ok := st.Data.(ast.ForData); ok {
			fl.lowerFor(data)
		}
	case ast.StmtSwitch:
		if data, ok := st.Data.(ast.SwitchData); ok {
			fl.lowerSwitch(data)
		}
	default:
		panic(fmt.Sprintf("lower: unexpected statement kind %s", st.Kind))
	}
}

// lowerVar declares a local. When the initializer fails but a type was
// declared, the variable is still bound to a zeroed slot so that later uses
// do not repeat the error.
func (fl *funcLowerer) lowerVar(st *ast.Stmt, data ast.VarData) {
	name := types.NormalizeIdent(data.Name)
	var declared *types.Type
	if data.Type != "" {
		t, ok := fl.resolveType(data.Type, st.Pos)
		if !ok {
			return
		}
		if t.IsVoid() {
			fl.errorf(diag.LowInvalidOperand, st.Pos, "variable %q cannot be void", name)
			return
		}
		declared = t
	}

	var (
		init value
		has  bool
	)
	if data.Value != nil {
		x, ok := fl.lowerExpr(data.Value)
		switch {
		case !ok:
		case x.typ.IsVoid():
			fl.errorf(diag.LowInvalidOperand, data.Value.Pos, "void value assigned to %q", name)
		default:
			init, has = x, true
		}
		if !has {
			if declared != nil {
				fl.declareVar(st, &symbols.Variable{Name: name, Type: declared, Pos: st.Pos, Addr: fl.zeroSlot(declared, name)})
			}
			return
		}
	}
	t := declared
	if t == nil {
		if !has {
			fl.errorf(diag.LowUnknownType, st.Pos, "variable %q has neither type nor initializer", name)
			return
		}
		t = init.typ
	}

	v := &symbols.Variable{Name: name, Type: t, Pos: st.Pos}
	switch {
	case has && t.IsStruct() && init.fresh && init.typ == t:
		// временное хранилище конструктора или вызова становится переменной
		v.Addr = init.v
	case has:
		slot := fl.bb.Alloca(t.IR, name)
		if !fl.storeInto(slot, t, init, st.Pos) {
			fl.bb.Cur().NewStore(constant.NewZeroInitializer(t.IR), slot)
		}
		v.Addr = slot
	default:
		v.Addr = fl.zeroSlot(t, name)
	}
	fl.declareVar(st, v)
}

func (fl *funcLowerer) zeroSlot(t *types.Type, name string) *ir.InstAlloca {
	slot := fl.bb.Alloca(t.IR, name)
	fl.bb.Cur().NewStore(constant.NewZeroInitializer(t.IR), slot)
	return slot
}

func (fl *funcLowerer) declareVar(st *ast.Stmt, v *symbols.Variable) {
	if !fl.bb.Declare(v) {
		fl.errorf(diag.DeclDuplicate, st.Pos, "variable %q is already declared in this scope", v.Name)
	}
}

func (fl *funcLowerer) lowerAssign(st *ast.Stmt, target []string, val *ast.Expr) {
	dst, ok := fl.place(target, st.Pos)
	if !ok {
		return
	}
	x, ok := fl.lowerExpr(val)
	if !ok {
		return
	}
	fl.storeInto(dst.v, dst.typ, x, st.Pos)
}

func (fl *funcLowerer) lowerIncDec(st *ast.Stmt, data ast.IncDecData) {
	dst, ok := fl.place(data.Target, st.Pos)
	if !ok {
		return
	}
	if !dst.typ.IsNumeric() {
		fl.errorf(diag.LowInvalidOperand, st.Pos, "cannot increment %s", dst.typ)
		return
	}
	var step value
	if data.Step != nil {
		if step, ok = fl.lowerExpr(data.Step); !ok {
			return
		}
	} else if dst.typ.IsFloat() {
		c, _ := scalarConstant(constVal{typ: dst.typ, f: 1})
		step = value{v: c, typ: dst.typ}
	} else {
		step = value{v: constant.NewInt(intIR(dst.typ), 1), typ: dst.typ}
	}
	sv, ok := fl.coerce(step, dst.typ, st.Pos)
	if !ok {
		return
	}
	cur := fl.bb.Cur()
	old := cur.NewLoad(dst.typ.IR, dst.v)
	op := ast.BinAdd
	if data.Decrement {
		op = ast.BinSub
	}
	cur.NewStore(fl.arith(op, dst.typ, old, sv), dst.v)
}

func (fl *funcLowerer) lowerReturn(st *ast.Stmt, data ast.ReturnData) {
	ret := fl.def.Return
	if data.Value == nil {
		if !ret.IsVoid() {
			fl.errorf(diag.LowArgumentMismatch, st.Pos, "missing return value of type %s", ret)
		}
		_ = fl.bb.Ret(nil)
		return
	}
	x, ok := fl.lowerExpr(data.Value)
	if !ok {
		_ = fl.bb.Unreachable()
		return
	}
	if ret.IsVoid() {
		fl.errorf(diag.LowArgumentMismatch, st.Pos, "function %q returns no value", fl.def.Name)
		_ = fl.bb.Ret(nil)
		return
	}
	if ret.IsStruct() {
		if x.typ != ret {
			fl.errorf(diag.LowArgumentMismatch, st.Pos, "cannot return %s as %s", x.typ, ret)
			_ = fl.bb.Unreachable()
			return
		}
		_ = fl.bb.Ret(fl.bb.Cur().NewLoad(ret.IR, x.v))
		return
	}
	v, ok := fl.coerce(x, ret, st.Pos)
	if !ok {
		_ = fl.bb.Unreachable()
		return
	}
	_ = fl.bb.Ret(v)
}

// condition lowers a Boolean condition.
func (fl *funcLowerer) condition(e *ast.Expr) (value, bool) {
	x, ok := fl.lowerExpr(e)
	if !ok {
		return value{}, false
	}
	if !x.typ.IsBool() {
		fl.errorf(diag.LowInvalidOperand, e.Pos, "condition must be Boolean, got %s", x.typ)
		return value{}, false
	}
	return value{v: fl.rvalue(x), typ: types.Boolean}, true
}

func (fl *funcLowerer) lowerIf(data ast.IfData) {
	bb := fl.bb
	cond, ok := fl.condition(data.Cond)
	if !ok {
		// ветви всё равно понижаются ради их собственных ошибок
		cond.v = constant.False
	}
	var c blocks.Conditional
	if data.HasElse || len(data.Else) > 0 {
		c = bb.NewConditionalWithElse("if")
	} else {
		c = bb.NewConditional("if")
	}
	_ = bb.CondJump(cond.v, c.Then, c.False())

	bb.Enter(c.Then)
	fl.lowerStmts(data.Then)
	bb.JumpIfNotExists(c.End)

	if c.Else != nil {
		bb.Enter(c.Else)
		fl.lowerStmts(data.Else)
		bb.JumpIfNotExists(c.End)
	}
	bb.Enter(c.End)
}

func (fl *funcLowerer) lowerWhile(data ast.WhileData) {
	bb := fl.bb
	loop := bb.NewLoop("while", nil)
	_ = bb.Jump(loop.Cond)

	bb.Enter(loop.Cond)
	if cond, ok := fl.condition(data.Cond); ok {
		_ = bb.CondJump(cond.v, loop.Body, loop.End)
	} else {
		_ = bb.Jump(loop.End)
	}

	bb.Enter(loop.Body)
	bb.PushContext(blocks.Context{Continue: loop.Cond, Break: loop.End})
	fl.lowerStmts(data.Body)
	bb.PopContext()
	bb.JumpIfNotExists(loop.Cond)

	bb.Enter(loop.End)
}

func (fl *funcLowerer) lowerLoop(data ast.LoopData) {
	bb := fl.bb
	loop := bb.NewLoop("loop", nil)
	bb.Discard(loop.Cond)
	_ = bb.Jump(loop.Body)

	bb.Enter(loop.Body)
	bb.PushContext(blocks.Context{Continue: loop.Body, Break: loop.End})
	fl.lowerStmts(data.Body)
	bb.PopContext()
	bb.JumpIfNotExists(loop.Body)

	bb.Enter(loop.End)
}

// lowerFor builds wrapper -> cond -> body -> step -> cond, with end owned
// by the enclosing scope so the loop variable dies with the wrapper.
func (fl *funcLowerer) lowerFor(data ast.ForData) {
	bb := fl.bb
	end := bb.NewBlock("for.end")
	wrapper := bb.NewScopedBlock("for", symbols.ScopeLoop)
	_ = bb.Jump(wrapper)

	bb.Enter(wrapper)
	if data.Init != nil {
		fl.lowerStmt(data.Init)
	}
	loop := bb.NewLoop("for", end)
	step := bb.NewBlock("for.step")
	bb.JumpIfNotExists(loop.Cond)

	bb.Enter(loop.Cond)
	if data.Cond == nil {
		_ = bb.Jump(loop.Body)
	} else if cond, ok := fl.condition(data.Cond); ok {
		_ = bb.CondJump(cond.v, loop.Body, end)
	} else {
		_ = bb.Jump(end)
	}

	bb.Enter(loop.Body)
	bb.PushContext(blocks.Context{Continue: step, Break: end})
	fl.lowerStmts(data.Body)
	bb.PopContext()
	bb.JumpIfNotExists(step)

	bb.Enter(step)
	if data.Step != nil {
		fl.lowerStmt(data.Step)
	}
	bb.JumpIfNotExists(loop.Cond)

	bb.Enter(end)
}

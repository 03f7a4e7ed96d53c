package lower

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"rial/internal/ast"
	"rial/internal/blocks"
	"rial/internal/diag"
	"rial/internal/source"
	"rial/internal/symbols"
	"rial/internal/types"
)

// value is the result of lowering an expression. When addr is set, v
// points to storage of typ; struct values are always addressed. fresh
// marks temporary storage that no variable refers to yet.
type value struct {
	v     llvalue.Value
	typ   *types.Type
	addr  bool
	fresh bool
	lit   bool // целочисленный литерал, для проверки диапазона
}

type funcLowerer struct {
	*moduleLowerer
	def  *symbols.FunctionDef
	fn   *ir.Func
	bb   *blocks.Builder
	this *symbols.Variable
}

func newFuncLowerer(ml *moduleLowerer, def *symbols.FunctionDef, fn *ir.Func) *funcLowerer {
	fl := &funcLowerer{moduleLowerer: ml, def: def, fn: fn, bb: blocks.New(fn)}
	fl.prologue()
	return fl
}

// prologue binds parameters. Scalars get a stack slot so they can be
// reassigned; struct parameters are references and are bound directly.
func (fl *funcLowerer) prologue() {
	params := fl.fn.Params
	if fl.def.HasThis() {
		var p *ir.Param
		if fl.def.Kind == ast.FuncConstructor {
			p, params = params[len(params)-1], params[:len(params)-1]
		} else {
			p, params = params[0], params[1:]
		}
		fl.this = fl.bindParam("this", fl.def.Receiver, p, fl.def.Decl.Pos)
	}
	for i, p := range params {
		name := p.Name()
		pos := fl.def.Decl.Pos
		if i < len(fl.def.Decl.Params) {
			name = types.NormalizeIdent(fl.def.Decl.Params[i].Name)
			pos = fl.def.Decl.Params[i].Pos
		}
		fl.bindParam(name, fl.def.Params[i], p, pos)
	}
}

func (fl *funcLowerer) bindParam(name string, t *types.Type, p *ir.Param, pos source.Pos) *symbols.Variable {
	v := &symbols.Variable{Name: name, Type: t, Addr: p, Pos: pos}
	if !t.IsStruct() {
		slot := fl.bb.Alloca(t.IR, name+".addr")
		fl.bb.Cur().NewStore(p, slot)
		v.Addr = slot
	}
	if !fl.bb.Declare(v) {
		fl.errorf(diag.DeclDuplicate, pos, "parameter %q is declared twice", name)
	}
	return v
}

func (fl *funcLowerer) lowerBody(body []*ast.Stmt) {
	fl.lowerStmts(body)
	fl.epilogue()
}

// epilogue terminates the block the body fell out of, then closes every
// block that is still open.
func (fl *funcLowerer) epilogue() {
	bb := fl.bb
	if cur := bb.Cur(); cur != nil && cur.Term == nil {
		switch {
		case fl.def.Return.IsVoid():
			_ = bb.Ret(nil)
		case !bb.HasPredecessors(cur):
			_ = bb.Unreachable()
		default:
			fl.errorf(diag.LowMissingReturn, fl.lastPos(), "function %q does not return a value on every path", fl.def.Name)
			_ = bb.Unreachable()
		}
	}
	for _, blk := range fl.fn.Blocks {
		if blk.Term == nil {
			blk.Term = ir.NewUnreachable()
		}
	}
}

func (fl *funcLowerer) lastPos() source.Pos {
	body := fl.def.Decl.Body
	if len(body) > 0 {
		return body[len(body)-1].Pos
	}
	return fl.def.Decl.Pos
}

// rvalue loads scalars from storage. Struct values stay references.
func (fl *funcLowerer) rvalue(x value) llvalue.Value {
	if !x.addr || x.typ.IsStruct() {
		return x.v
	}
	return fl.bb.Cur().NewLoad(x.typ.IR, x.v)
}

// lookupVar finds a local, then a module global, by name.
func (fl *funcLowerer) lookupVar(name string, pos source.Pos) (*symbols.Variable, bool) {
	if v, ok := fl.bb.Lookup(name); ok {
		return v, true
	}
	g, err := fl.table.FindGlobal(name)
	if err != nil {
		if !isNotFound(err) {
			fl.lookupError(err, diag.LowUnknownIdentifier, pos, name)
			return nil, true
		}
		return nil, false
	}
	return &symbols.Variable{Name: name, Type: g.Type, Addr: fl.globalFor(g), Pos: pos}, true
}

// place resolves a dotted path to addressed storage: the longest prefix
// naming a variable, followed by field accesses. Inside methods a path
// whose head is not a variable is looked up on `this`.
func (fl *funcLowerer) place(segs []string, pos source.Pos) (value, bool) {
	if len(segs) == 0 {
		return value{}, false
	}
	var (
		v    *symbols.Variable
		rest []string
	)
	for i := len(segs); i >= 1 && v == nil; i-- {
		found, ok := fl.lookupVar(strings.Join(segs[:i], "."), pos)
		if ok && found == nil {
			return value{}, false // уже сообщили
		}
		if ok {
			v, rest = found, segs[i:]
		}
	}
	if v == nil && fl.this != nil && fl.this.Type.IsStruct() {
		if def, ok := fl.reg.StructOf(fl.this.Type); ok {
			if _, isField := def.Field(segs[0]); isField {
				v, rest = fl.this, segs
			}
		}
	}
	if v == nil {
		fl.errorf(diag.LowUnknownIdentifier, pos, "unknown identifier %q", strings.Join(segs, "."))
		return value{}, false
	}
	cur := value{v: v.Addr, typ: v.Type, addr: true}
	for _, seg := range rest {
		next, ok := fl.field(cur, seg, pos)
		if !ok {
			return value{}, false
		}
		cur = next
	}
	return cur, true
}

// field addresses a struct field.
func (fl *funcLowerer) field(x value, name string, pos source.Pos) (value, bool) {
	def, ok := fl.reg.StructOf(x.typ)
	if !ok {
		fl.errorf(diag.LowUnknownIdentifier, pos, "%s has no field %q", x.typ, name)
		return value{}, false
	}
	f, ok := def.Field(name)
	if !ok {
		fl.errorf(diag.LowUnknownIdentifier, pos, "struct %s has no field %q", def.Name, name)
		return value{}, false
	}
	zero := constant.NewInt(irtypes.I32, 0)
	idx := constant.NewInt(irtypes.I32, int64(f.Index))
	ptr := fl.bb.Cur().NewGetElementPtr(x.typ.IR, x.v, zero, idx)
	return value{v: ptr, typ: f.Type, addr: true}, true
}

// coerce converts x to type to for storing, passing or returning. Structs
// convert only to themselves or, by reference, to a base.
func (fl *funcLowerer) coerce(x value, to *types.Type, pos source.Pos) (llvalue.Value, bool) {
	if x.typ.IsVoid() {
		fl.errorf(diag.LowInvalidOperand, pos, "void value used as %s", to)
		return nil, false
	}
	if x.typ == to {
		return fl.rvalue(x), true
	}
	if x.lit && to.IsInteger() {
		if c, ok := x.v.(*constant.Int); ok && !types.FitsInt(to, c.X.Int64()) {
			fl.errorf(diag.LowLiteralOverflow, pos, "literal %s overflows %s", c.X, to)
			return nil, false
		}
	}
	op, err := types.Cast(x.typ, to)
	if err != nil || (x.typ.IsStruct() && !to.IsStruct()) {
		fl.errorf(diag.LowArgumentMismatch, pos, "cannot use %s as %s", x.typ, to)
		return nil, false
	}
	return types.Apply(fl.bb.Cur(), op, fl.rvalue(x), to), true
}

// storeInto writes x into storage of type t at dst.
func (fl *funcLowerer) storeInto(dst llvalue.Value, t *types.Type, x value, pos source.Pos) bool {
	if t.IsStruct() {
		if x.typ != t {
			fl.errorf(diag.LowArgumentMismatch, pos, "cannot assign %s to %s", x.typ, t)
			return false
		}
		cur := fl.bb.Cur()
		cur.NewStore(cur.NewLoad(t.IR, x.v), dst)
		return true
	}
	v, ok := fl.coerce(x, t, pos)
	if !ok {
		return false
	}
	fl.bb.Cur().NewStore(v, dst)
	return true
}

func (fl *funcLowerer) resolveType(name string, pos source.Pos) (*types.Type, bool) {
	t, err := fl.table.ResolveType(name)
	if err != nil {
		fl.lookupError(err, diag.LowUnknownType, pos, name)
		return nil, false
	}
	fl.useType(t)
	return t, true
}

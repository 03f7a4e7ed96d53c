package lower

import (
	"strings"

	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	llvalue "github.com/llir/llvm/ir/value"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/source"
	"rial/internal/symbols"
	"rial/internal/types"
)

type argument struct {
	value
	pos source.Pos
}

func (fl *funcLowerer) lowerArgs(exprs []*ast.Expr) ([]argument, bool) {
	out := make([]argument, 0, len(exprs))
	ok := true
	for _, e := range exprs {
		x, good := fl.lowerExpr(e)
		if !good {
			ok = false
			continue
		}
		if x.typ.IsVoid() {
			fl.errorf(diag.LowInvalidOperand, e.Pos, "void value used as an argument")
			ok = false
			continue
		}
		out = append(out, argument{value: x, pos: e.Pos})
	}
	return out, ok
}

func argTypes(args []argument) []*types.Type {
	out := make([]*types.Type, len(args))
	for i, a := range args {
		out[i] = a.typ
	}
	return out
}

func describe(name string, args []argument) string {
	return types.MangleTypes(name, nil, argTypes(args))
}

// lowerCall lowers a plain call. A name that resolves to a struct is a
// constructor call. Inside methods a method of `this` wins over a free
// function of the same signature; the bare name is tried last so that
// external functions resolve without mangling.
func (fl *funcLowerer) lowerCall(e *ast.Expr, data ast.CallData) (value, bool) {
	name := types.NormalizeIdent(data.Name)
	sdef, err := fl.table.FindStruct(name)
	switch {
	case err == nil:
		return fl.construct(e, sdef, data.Args)
	case !isNotFound(err):
		fl.lookupError(err, diag.LowUnknownIdentifier, e.Pos, name)
		return value{}, false
	}

	args, ok := fl.lowerArgs(data.Args)
	if !ok {
		return value{}, false
	}
	ns, bare := symbols.SplitQualified(name)
	if fl.this != nil && ns == "" {
		self := value{v: fl.this.Addr, typ: fl.this.Type, addr: true}
		if res, found, ok := fl.callMethod(e, self, bare, args); found {
			return res, ok
		}
	}

	mangled := symbols.QualifiedKey(ns, types.MangleTypes(bare, nil, argTypes(args)))
	def, err := fl.table.FindFunction(mangled)
	if isNotFound(err) {
		def, err = fl.table.FindFunction(name)
	}
	if err != nil {
		fl.lookupError(err, diag.LowUnknownIdentifier, e.Pos, "function "+describe(name, args))
		return value{}, false
	}
	if def.Kind != ast.FuncFree && def.Kind != ast.FuncExternal {
		fl.errorf(diag.LowUnknownIdentifier, e.Pos, "unknown function %s", describe(name, args))
		return value{}, false
	}
	return fl.emitCall(e, def, nil, args)
}

// callMethod looks a method up on the receiver: the receiver's own struct,
// then each direct base in declaration order, then extension functions
// visible from this module. found is false when nothing matched.
func (fl *funcLowerer) callMethod(e *ast.Expr, recv value, name string, args []argument) (res value, found, ok bool) {
	argTs := argTypes(args)
	if recv.typ.IsStruct() {
		chain := append([]*types.Type{recv.typ}, recv.typ.Bases...)
		for _, t := range chain {
			sdef, known := fl.reg.StructOf(t)
			if !known {
				continue
			}
			key := symbols.QualifiedKey(sdef.Module, types.MangleTypes(name, t, argTs))
			def, hit := fl.reg.Function(key)
			if !hit || def.Kind != ast.FuncMethod {
				continue
			}
			if err := fl.table.CheckAccess(def); err != nil {
				fl.lookupError(err, diag.LowUnknownIdentifier, e.Pos, def.Mangled)
				return value{}, true, false
			}
			this := recv.v
			if t != recv.typ {
				this = types.Apply(fl.bb.Cur(), types.CastBitCast, recv.v, t)
			}
			res, ok = fl.emitCall(e, def, this, args)
			return res, true, ok
		}
	}

	def, err := fl.table.FindFunction(types.MangleTypes(name, recv.typ, argTs))
	if err != nil {
		if isNotFound(err) {
			return value{}, false, false
		}
		fl.lookupError(err, diag.LowUnknownIdentifier, e.Pos, name)
		return value{}, true, false
	}
	if def.Kind != ast.FuncExtension {
		return value{}, false, false
	}
	res, ok = fl.emitCall(e, def, fl.rvalue(recv), args)
	return res, true, ok
}

// isVariable reports whether name is a local, a visible global or a field
// of `this`, without reporting anything.
func (fl *funcLowerer) isVariable(name string) bool {
	if _, ok := fl.bb.Lookup(name); ok {
		return true
	}
	if _, err := fl.table.FindGlobal(name); err == nil || !isNotFound(err) {
		return true
	}
	if fl.this != nil {
		if def, ok := fl.reg.StructOf(fl.this.Type); ok {
			if _, ok := def.Field(name); ok {
				return true
			}
		}
	}
	return false
}

// lowerMethodCall lowers `recv.name(args)`. A receiver path whose head is
// not a variable is a namespace: `geo.distance(a)` calls `geo:distance`.
func (fl *funcLowerer) lowerMethodCall(e *ast.Expr, data ast.MethodCallData) (value, bool) {
	if len(data.Receiver) == 0 {
		return fl.lowerCall(e, ast.CallData{Name: data.Name, Args: data.Args})
	}
	if !fl.isVariable(data.Receiver[0]) {
		ns := strings.Join(data.Receiver, ":")
		return fl.lowerCall(e, ast.CallData{Name: ns + ":" + data.Name, Args: data.Args})
	}
	recv, ok := fl.place(data.Receiver, e.Pos)
	if !ok {
		return value{}, false
	}
	args, ok := fl.lowerArgs(data.Args)
	if !ok {
		return value{}, false
	}
	name := types.NormalizeIdent(data.Name)
	if res, found, ok := fl.callMethod(e, recv, name, args); found {
		return res, ok
	}

	// свободная функция с получателем первым аргументом
	withRecv := append([]argument{{value: recv, pos: e.Pos}}, args...)
	def, err := fl.table.FindFunction(types.MangleTypes(name, nil, argTypes(withRecv)))
	if isNotFound(err) {
		def, err = fl.table.FindFunction(name)
	}
	if err != nil {
		if isNotFound(err) {
			fl.errorf(diag.LowUnknownIdentifier, e.Pos, "%s has no method %s", recv.typ, describe(name, args))
		} else {
			fl.lookupError(err, diag.LowUnknownIdentifier, e.Pos, name)
		}
		return value{}, false
	}
	return fl.emitCall(e, def, nil, withRecv)
}

func (fl *funcLowerer) lowerConstructByName(e *ast.Expr, name string, args []*ast.Expr) (value, bool) {
	sdef, err := fl.table.FindStruct(types.NormalizeIdent(name))
	if err != nil {
		fl.lookupError(err, diag.LowUnknownType, e.Pos, name)
		return value{}, false
	}
	return fl.construct(e, sdef, args)
}

// construct allocates zeroed storage for a struct and runs the matching
// constructor on it. Without a constructor, arguments matching the field
// count initialize the fields in order.
func (fl *funcLowerer) construct(e *ast.Expr, sdef *symbols.StructDef, exprs []*ast.Expr) (value, bool) {
	args, ok := fl.lowerArgs(exprs)
	if !ok {
		return value{}, false
	}
	t := sdef.Type
	fl.useType(t)
	tmp := fl.bb.Alloca(t.IR, strings.ToLower(sdef.Name)+".tmp")
	fl.bb.Cur().NewStore(constant.NewZeroInitializer(t.IR), tmp)
	obj := value{v: tmp, typ: t, addr: true, fresh: true}

	key := symbols.QualifiedKey(sdef.Module, types.MangleTypes(sdef.Name, nil, argTypes(args)))
	if def, hit := fl.reg.Function(key); hit && def.Kind == ast.FuncConstructor {
		if err := fl.table.CheckAccess(def); err != nil {
			fl.lookupError(err, diag.LowUnknownIdentifier, e.Pos, def.Mangled)
			return value{}, false
		}
		if _, ok := fl.emitCall(e, def, tmp, args); !ok {
			return value{}, false
		}
		return obj, true
	}
	if len(args) == 0 {
		return obj, true
	}
	if len(args) != len(sdef.Fields) {
		fl.errorf(diag.LowArgumentMismatch, e.Pos, "struct %s has no constructor %s", sdef.Name, describe(sdef.Name, args))
		return value{}, false
	}
	for i, f := range sdef.Fields {
		dst, _ := fl.field(obj, f.Name, args[i].pos)
		if !fl.storeInto(dst.v, f.Type, args[i].value, args[i].pos) {
			return value{}, false
		}
	}
	return obj, true
}

// emitCall emits the call instruction. this is the receiver reference for
// methods and extensions and the storage for constructors.
func (fl *funcLowerer) emitCall(e *ast.Expr, def *symbols.FunctionDef, this llvalue.Value, args []argument) (value, bool) {
	if len(args) < len(def.Params) || (!def.Variadic && len(args) != len(def.Params)) {
		fl.errorf(diag.LowArgumentMismatch, e.Pos, "%s expects %d arguments, got %d", def.Name, len(def.Params), len(args))
		return value{}, false
	}
	fn := fl.funcFor(def)
	irArgs := make([]llvalue.Value, 0, len(args)+1)
	if this != nil && def.Kind != ast.FuncConstructor {
		irArgs = append(irArgs, this)
	}
	for i, a := range args {
		if i < len(def.Params) {
			v, ok := fl.coerce(a.value, def.Params[i], a.pos)
			if !ok {
				return value{}, false
			}
			irArgs = append(irArgs, v)
			continue
		}
		v, ok := fl.variadicArg(a)
		if !ok {
			return value{}, false
		}
		irArgs = append(irArgs, v)
	}
	if def.Kind == ast.FuncConstructor {
		irArgs = append(irArgs, this)
	}

	cur := fl.bb.Cur()
	call := cur.NewCall(fn, irArgs...)
	ret := def.Return
	switch {
	case ret.IsVoid():
		return value{typ: types.Void}, true
	case ret.IsStruct():
		tmp := fl.bb.Alloca(ret.IR, "ret.tmp")
		cur.NewStore(call, tmp)
		return value{v: tmp, typ: ret, addr: true, fresh: true}, true
	default:
		return value{v: call, typ: ret}, true
	}
}

// variadicArg applies the C default argument promotions.
func (fl *funcLowerer) variadicArg(a argument) (llvalue.Value, bool) {
	cur := fl.bb.Cur()
	t := a.typ
	switch {
	case t.IsStruct():
		fl.errorf(diag.LowArgumentMismatch, a.pos, "struct %s cannot be passed as a variadic argument", t)
		return nil, false
	case t == types.Float32:
		return cur.NewFPExt(fl.rvalue(a.value), irtypes.Double), true
	case (t.IsInteger() || t.IsBool()) && t.Width < types.Width32:
		if t.IsSigned() {
			return cur.NewSExt(fl.rvalue(a.value), irtypes.I32), true
		}
		return cur.NewZExt(fl.rvalue(a.value), irtypes.I32), true
	}
	return fl.rvalue(a.value), true
}

package lower

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/symbols"
	"rial/internal/types"
)

// moduleLowerer holds the per-unit state shared by all function lowerers.
type moduleLowerer struct {
	reporter
	engine *Engine
	unit   *ast.Unit
	table  *symbols.Table
	reg    *symbols.Registry
	m      *ir.Module

	funcs    map[*symbols.FunctionDef]*ir.Func
	globals  map[*symbols.GlobalDef]*ir.Global
	typedefs map[*irtypes.StructType]bool
	strs     map[string]*ir.Global
}

// LowerUnit lowers every function body of the unit into a fresh module.
// The registry must be frozen. A *FatalError aborts the unit; the module
// returned alongside it is incomplete.
func (e *Engine) LowerUnit(in Input) (*ir.Module, error) {
	u := in.Unit
	if !e.Registry.Frozen() {
		return nil, fmt.Errorf("lower %s: registry is not frozen", u.Module)
	}
	ast.Desugar(u)

	ml := &moduleLowerer{
		reporter: in.reporter(),
		engine:   e,
		unit:     u,
		table:    symbols.NewTable(e.Registry, u.Module, u.Usings),
		reg:      e.Registry,
		m:        ir.NewModule(),
		funcs:    make(map[*symbols.FunctionDef]*ir.Func),
		globals:  make(map[*symbols.GlobalDef]*ir.Global),
		typedefs: make(map[*irtypes.StructType]bool),
		strs:     make(map[string]*ir.Global),
	}
	ml.m.SourceFilename = u.Module
	if u.Source != "" {
		ml.m.SourceFilename = u.Source
	}

	for _, d := range u.Decls {
		switch d.Kind {
		case ast.DeclStruct:
			if def, ok := e.Registry.Struct(d.Struct.FullName); ok && d.Struct.FullName != "" {
				ml.useType(def.Type)
			}
		case ast.DeclGlobal:
			if def, ok := e.Registry.Global(symbols.QualifiedKey(u.Module, types.NormalizeIdent(d.Global.Name))); ok && def.Decl == d.Global {
				ml.globalFor(def)
			}
		}
	}

	for _, d := range u.Decls {
		switch d.Kind {
		case ast.DeclFunc:
			if err := ml.lowerFuncDecl(d.Func); err != nil {
				return ml.m, err
			}
		case ast.DeclStruct:
			for _, fn := range d.Struct.Methods {
				if err := ml.lowerFuncDecl(fn); err != nil {
					return ml.m, err
				}
			}
		}
	}
	return ml.m, nil
}

// useType makes sure the named struct types behind t are defined in the
// module. Fields are embedded by value, so their structs are added too.
func (ml *moduleLowerer) useType(t *types.Type) {
	if !t.IsStruct() {
		return
	}
	st := t.StructIR()
	if ml.typedefs[st] {
		return
	}
	ml.typedefs[st] = true
	ml.m.TypeDefs = append(ml.m.TypeDefs, st)
	if def, ok := ml.reg.StructOf(t); ok {
		for _, f := range def.Fields {
			ml.useType(f.Type)
		}
	}
}

// funcFor returns the module-local handle of def, declaring it on first
// use. Functions of other modules stay body-less declarations.
func (ml *moduleLowerer) funcFor(def *symbols.FunctionDef) *ir.Func {
	if fn, ok := ml.funcs[def]; ok {
		return fn
	}
	var params []*ir.Param
	if def.Kind == ast.FuncMethod || def.Kind == ast.FuncExtension {
		ml.useType(def.Receiver)
		params = append(params, ir.NewParam("this", def.Receiver.ParamIR()))
	}
	names := map[string]bool{"this": true}
	for i, t := range def.Params {
		ml.useType(t)
		name := "arg" + strconv.Itoa(i)
		if def.Decl != nil && i < len(def.Decl.Params) && def.Decl.Params[i].Name != "" {
			name = types.NormalizeIdent(def.Decl.Params[i].Name)
		}
		if names[name] {
			name += "." + strconv.Itoa(i)
		}
		names[name] = true
		params = append(params, ir.NewParam(name, t.ParamIR()))
	}
	if def.Kind == ast.FuncConstructor {
		ml.useType(def.Receiver)
		params = append(params, ir.NewParam("this", def.Receiver.ParamIR()))
	}
	ml.useType(def.Return)
	fn := ml.m.NewFunc(def.IRName(), def.Return.IR, params...)
	fn.Sig.Variadic = def.Variadic
	ml.funcs[def] = fn
	return fn
}

// globalFor returns the module-local handle of a global. The owning module
// defines it; other modules reference an external declaration.
func (ml *moduleLowerer) globalFor(def *symbols.GlobalDef) *ir.Global {
	if g, ok := ml.globals[def]; ok {
		return g
	}
	ml.useType(def.Type)
	var g *ir.Global
	switch {
	case def.Module != ml.unit.Module:
		g = ml.m.NewGlobal(def.DefKey(), def.Type.IR)
	case def.Init != nil:
		g = ml.m.NewGlobalDef(def.DefKey(), def.Init)
	default:
		g = ml.m.NewGlobalDef(def.DefKey(), ml.globalInit(def))
	}
	if def.Module == ml.unit.Module && def.Access == ast.AccessPrivate {
		g.Linkage = enum.LinkageInternal
	}
	ml.globals[def] = g
	return g
}

func (ml *moduleLowerer) globalInit(def *symbols.GlobalDef) constant.Constant {
	f := folder{reporter: reporter{rep: diag.NopReporter{}, file: ml.file}, structs: ml.table}
	if v, ok := f.fold(def.Decl.Value); ok && v.typ.Kind == types.KindCString {
		return ml.stringConst(v.s)
	}
	return constant.NewZeroInitializer(def.Type.IR)
}

// stringConst interns s as a private NUL-terminated array and returns a
// pointer to its first character.
func (ml *moduleLowerer) stringConst(s string) constant.Constant {
	g, ok := ml.strs[s]
	if !ok {
		arr := constant.NewCharArrayFromString(s + "\x00")
		g = ml.m.NewGlobalDef(".str."+strconv.Itoa(len(ml.strs)), arr)
		g.Linkage = enum.LinkagePrivate
		g.Immutable = true
		g.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
		ml.strs[s] = g
	}
	zero := constant.NewInt(irtypes.I64, 0)
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}

func (ml *moduleLowerer) lowerFuncDecl(fn *ast.FuncDecl) error {
	if fn == nil {
		return nil
	}
	if fn.Kind == ast.FuncExternal {
		if def, ok := ml.reg.Function(types.NormalizeIdent(fn.Name)); ok && def.Decl == fn {
			ml.funcFor(def)
		}
		return nil
	}
	if ml.engine.hasFailed(fn) {
		return nil
	}
	var def *symbols.FunctionDef
	if fn.FullName != "" {
		def, _ = ml.reg.Function(symbols.QualifiedKey(ml.unit.Module, fn.FullName))
	}
	if def == nil || def.Decl != fn {
		ml.errorf(diag.LowMissingDeclaration, fn.Pos, "function %q has no declaration", fn.Name)
		return &FatalError{Module: ml.unit.Module, Pos: fn.Pos, Msg: fmt.Sprintf("missing declaration for %q", fn.Name)}
	}
	irFn := ml.funcFor(def)
	if def.Access == ast.AccessPrivate && def.IRName() != "main" {
		irFn.Linkage = enum.LinkageInternal
	}
	fl := newFuncLowerer(ml, def, irFn)
	fl.lowerBody(fn.Body)
	return nil
}

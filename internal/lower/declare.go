package lower

import (
	"errors"
	"fmt"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/source"
	"rial/internal/symbols"
	"rial/internal/types"
)

// DeclareStructs registers an opaque shell for every struct of the unit.
func (e *Engine) DeclareStructs(in Input) error {
	u := in.Unit
	r := in.reporter()
	for _, d := range u.Decls {
		if d.Kind != ast.DeclStruct || d.Struct == nil {
			continue
		}
		sd := d.Struct
		name := types.NormalizeIdent(sd.Name)
		if types.IsBuiltinName(name) {
			r.errorf(diag.DeclInvalidShape, sd.Pos, "struct %q shadows a builtin type", name)
			continue
		}
		full := symbols.QualifiedKey(u.Module, name)
		def := &symbols.StructDef{
			Module: u.Module,
			Name:   name,
			Access: sd.Access,
			Type:   types.NewStruct(name, full),
			Decl:   sd,
		}
		if err := e.Registry.AddStruct(def); err != nil {
			if e.reportAddError(r, err, sd.Pos) {
				continue
			}
			return err
		}
		sd.FullName = full
	}
	return nil
}

// reportAddError turns a duplicate into a diagnostic. Any other error is
// returned to the caller as a broken pass protocol.
func (e *Engine) reportAddError(r reporter, err error, pos source.Pos) bool {
	var dup *symbols.DuplicateError
	if errors.As(err, &dup) {
		r.errorf(diag.DeclDuplicate, pos, "%s %q is already declared", dup.Kind, dup.Key)
		return true
	}
	return false
}

// DeclareUnit completes struct layouts, registers every function signature
// and folds global initializers. It must run after DeclareStructs has
// finished for all units.
func (e *Engine) DeclareUnit(in Input) error {
	u := in.Unit
	r := in.reporter()
	table := symbols.NewTable(e.Registry, u.Module, u.Usings)

	for _, d := range u.Decls {
		switch d.Kind {
		case ast.DeclStruct:
			if d.Struct == nil || d.Struct.FullName == "" {
				continue
			}
			if err := e.declareStructBody(r, table, d.Struct); err != nil {
				return err
			}
		case ast.DeclFunc:
			if d.Func == nil {
				continue
			}
			if err := e.declareFunc(r, table, d.Func, nil); err != nil {
				return err
			}
		case ast.DeclGlobal:
			if d.Global == nil {
				continue
			}
			if err := e.declareGlobal(r, table, d.Global); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) declareStructBody(r reporter, table *symbols.Table, sd *ast.StructDecl) error {
	def, ok := e.Registry.Struct(sd.FullName)
	if !ok {
		return fmt.Errorf("struct %q has no shell", sd.FullName)
	}

	for _, name := range sd.Bases {
		base, err := table.FindStruct(name)
		if err != nil {
			if errors.Is(err, symbols.ErrNotFound) {
				r.errorf(diag.DeclUnknownBase, sd.Pos, "unknown base %q of struct %s", name, def.Name)
			} else {
				r.lookupError(err, diag.DeclUnknownBase, sd.Pos, name)
			}
			continue
		}
		// base lists of other units are still being filled, so only the
		// direct self reference is rejected here
		if base.Type == def.Type {
			r.errorf(diag.DeclInvalidShape, sd.Pos, "struct %s cannot inherit from itself", def.Name)
			continue
		}
		def.Type.Bases = append(def.Type.Bases, base.Type)
	}

	fieldTypes := make([]*types.Type, 0, len(sd.Fields))
	seen := make(map[string]bool, len(sd.Fields))
	for _, f := range sd.Fields {
		name := types.NormalizeIdent(f.Name)
		if seen[name] {
			r.errorf(diag.DeclDuplicate, f.Pos, "field %q is already declared in %s", name, def.Name)
			continue
		}
		t, err := table.ResolveType(f.Type)
		if err != nil {
			r.lookupError(err, diag.LowUnknownType, f.Pos, f.Type)
			continue
		}
		if t == def.Type {
			r.errorf(diag.DeclInvalidShape, f.Pos, "struct %s cannot contain itself", def.Name)
			continue
		}
		if t.IsVoid() {
			r.errorf(diag.DeclInvalidShape, f.Pos, "field %q cannot be void", name)
			continue
		}
		seen[name] = true
		def.Fields = append(def.Fields, symbols.FieldDef{Name: name, Type: t, Index: len(fieldTypes), Pos: f.Pos})
		fieldTypes = append(fieldTypes, t)
	}
	def.Type.SetFields(fieldTypes)

	for _, m := range sd.Methods {
		if err := e.declareFunc(r, table, m, def); err != nil {
			return err
		}
	}
	return nil
}

// declareFunc resolves the signature of fn and registers it. owner is the
// enclosing struct of methods and constructors.
func (e *Engine) declareFunc(r reporter, table *symbols.Table, fn *ast.FuncDecl, owner *symbols.StructDef) error {
	failed := false
	resolve := func(name string, pos source.Pos) *types.Type {
		t, err := table.ResolveType(name)
		if err != nil {
			r.lookupError(err, diag.LowUnknownType, pos, name)
			failed = true
		}
		return t
	}

	params := make([]*types.Type, 0, len(fn.Params))
	for _, p := range fn.Params {
		t := resolve(p.Type, p.Pos)
		if t != nil && t.IsVoid() {
			r.errorf(diag.DeclInvalidShape, p.Pos, "parameter %q cannot be void", p.Name)
			failed = true
		}
		params = append(params, t)
	}
	ret := resolve(fn.ReturnType(), fn.Pos)

	def := &symbols.FunctionDef{
		Module:   table.Module,
		Name:     types.NormalizeIdent(fn.Name),
		Kind:     fn.Kind,
		Access:   fn.Access,
		Params:   params,
		Return:   ret,
		Variadic: fn.Variadic,
		Decl:     fn,
	}
	switch fn.Kind {
	case ast.FuncMethod, ast.FuncConstructor:
		if owner == nil {
			r.errorf(diag.DeclInvalidShape, fn.Pos, "%s %q outside of a struct", fn.Kind, fn.Name)
			failed = true
			break
		}
		def.Receiver = owner.Type
		if fn.Kind == ast.FuncConstructor {
			def.Name = owner.Name
			def.Return = types.Void
		}
	case ast.FuncExtension:
		recv, err := table.ResolveType(fn.Receiver)
		switch {
		case err != nil:
			r.lookupError(err, diag.LowUnknownType, fn.Pos, fn.Receiver)
			failed = true
		case recv.IsVoid():
			r.errorf(diag.DeclInvalidShape, fn.Pos, "extension receiver cannot be void")
			failed = true
		default:
			def.Receiver = recv
		}
	case ast.FuncExternal:
		if len(fn.Body) > 0 {
			r.errorf(diag.DeclInvalidShape, fn.Pos, "external function %q cannot have a body", fn.Name)
		}
	}
	if fn.Variadic && fn.Kind != ast.FuncExternal {
		r.errorf(diag.DeclInvalidShape, fn.Pos, "only external functions can be variadic")
		failed = true
	}
	if failed {
		e.markFailed(fn)
		return nil
	}

	recv := def.Receiver
	if fn.Kind == ast.FuncConstructor {
		recv = nil
	}
	def.Mangled = types.MangleTypes(def.Name, recv, params)
	if err := e.Registry.AddFunction(def); err != nil {
		if e.reportAddError(r, err, fn.Pos) {
			e.markFailed(fn)
			return nil
		}
		return err
	}
	fn.FullName = def.Mangled
	return nil
}

func (e *Engine) declareGlobal(r reporter, table *symbols.Table, g *ast.GlobalDecl) error {
	f := folder{reporter: r, structs: table}
	v, ok := f.fold(g.Value)
	if !ok {
		r.errorf(diag.LowNonConstantGlobal, g.Pos, "initializer of global %q is not constant", g.Name)
		return nil
	}
	typ := v.typ
	if g.Type != "" {
		t, err := table.ResolveType(g.Type)
		if err != nil {
			r.lookupError(err, diag.LowUnknownType, g.Pos, g.Type)
			return nil
		}
		if v, ok = convertConst(v, t); !ok {
			r.errorf(diag.LowInvalidCast, g.Pos, "cannot initialize %s global %q with %s", t, g.Name, typ)
			return nil
		}
		typ = t
	}
	def := &symbols.GlobalDef{
		Module: table.Module,
		Name:   types.NormalizeIdent(g.Name),
		Access: g.Access,
		Type:   typ,
		Decl:   g,
	}
	// строки получают инициализатор в своём модуле при понижении
	if !typ.IsStruct() && typ.Kind != types.KindCString {
		def.Init, _ = scalarConstant(v)
	}
	if err := e.Registry.AddGlobal(def); err != nil {
		if e.reportAddError(r, err, g.Pos) {
			return nil
		}
		return err
	}
	return nil
}

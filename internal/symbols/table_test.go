package symbols

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"rial/internal/ast"
	"rial/internal/types"
)

func fn(module, name string, access ast.Access, args ...*types.Type) *FunctionDef {
	return &FunctionDef{
		Module:  module,
		Name:    name,
		Mangled: types.MangleTypes(name, nil, args),
		Access:  access,
		Params:  args,
		Return:  types.Void,
	}
}

func mustAdd(t *testing.T, reg *Registry, defs ...*FunctionDef) {
	t.Helper()
	for _, d := range defs {
		be.Err(t, reg.AddFunction(d), nil)
	}
}

func TestRegistryDuplicateAndFreeze(t *testing.T) {
	reg := NewRegistry()
	mustAdd(t, reg, fn("app:main", "f", ast.AccessPublic))

	err := reg.AddFunction(fn("app:main", "f", ast.AccessPrivate))
	var dup *DuplicateError
	be.True(t, errors.As(err, &dup))
	be.Equal(t, dup.Key, "app:main:f()")

	reg.Freeze()
	be.True(t, reg.Frozen())
	err = reg.AddFunction(fn("app:main", "g", ast.AccessPublic))
	be.True(t, errors.Is(err, ErrFrozen))

	structs, funcs, globals := reg.Counts()
	be.Equal(t, [3]int{structs, funcs, globals}, [3]int{0, 1, 0})
}

func TestFindFunctionTiers(t *testing.T) {
	reg := NewRegistry()
	ext := &FunctionDef{Module: "rial:std:io", Name: "puts", Mangled: "puts(CString)", Kind: ast.FuncExternal}
	mustAdd(t, reg,
		fn("app:main", "f", ast.AccessPrivate),
		fn("app:geo", "distance", ast.AccessPublic, types.Int32),
		fn("app:util", "helper", ast.AccessInternal),
		ext,
	)
	reg.Freeze()

	table := NewTable(reg, "app:main", []ast.Using{
		{Namespace: "app:util"},
		{Namespace: "app:geo", Alias: "g"},
	})

	tests := []struct {
		name string
		want string
	}{
		{"f()", "app:main:f()"},
		{"puts", "puts"},
		{"app:geo:distance(Int32)", "app:geo:distance(Int32)"},
		{"g:distance(Int32)", "app:geo:distance(Int32)"},
		{"geo:distance(Int32)", "app:geo:distance(Int32)"},
		{"helper()", "app:util:helper()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := table.FindFunction(tt.name)
			be.Err(t, err, nil)
			be.Equal(t, def.DefKey(), tt.want)
		})
	}

	// алиасная using не участвует в поиске без квалификатора
	_, err := table.FindFunction("distance(Int32)")
	be.True(t, errors.Is(err, ErrNotFound))
}

func TestFindFunctionAmbiguity(t *testing.T) {
	reg := NewRegistry()
	mustAdd(t, reg,
		fn("lib:a", "open", ast.AccessPublic),
		fn("lib:b", "open", ast.AccessPublic),
	)
	table := NewTable(reg, "app:main", []ast.Using{{Namespace: "lib:a"}, {Namespace: "lib:b"}})

	_, err := table.FindFunction("open()")
	var amb *AmbiguousError
	be.True(t, errors.As(err, &amb))
	be.Equal(t, amb.Candidates, []string{"lib:a:open()", "lib:b:open()"})

	def, err := table.FindFunction("lib:b:open()")
	be.Err(t, err, nil)
	be.Equal(t, def.Module, "lib:b")
}

func TestFindFunctionSameObjectThroughTwoUsings(t *testing.T) {
	reg := NewRegistry()
	mustAdd(t, reg, fn("lib:a", "open", ast.AccessPublic))
	table := NewTable(reg, "app:main", []ast.Using{{Namespace: "lib:a"}, {Namespace: "lib:a"}})

	def, err := table.FindFunction("open()")
	be.Err(t, err, nil)
	be.Equal(t, def.Module, "lib:a")
}

func TestAccessRules(t *testing.T) {
	reg := NewRegistry()
	mustAdd(t, reg,
		fn("app:geo", "secret", ast.AccessPrivate),
		fn("app:geo", "shared", ast.AccessInternal),
		fn("app:geo", "open", ast.AccessPublic),
	)

	inside := NewTable(reg, "app:main", nil)
	outside := NewTable(reg, "other:main", nil)

	tests := []struct {
		table *Table
		name  string
		ok    bool
	}{
		{inside, "app:geo:secret()", false},
		{inside, "app:geo:shared()", true},
		{inside, "app:geo:open()", true},
		{outside, "app:geo:shared()", false},
		{outside, "app:geo:open()", true},
	}
	for _, tt := range tests {
		t.Run(tt.table.Module+"/"+tt.name, func(t *testing.T) {
			_, err := tt.table.FindFunction(tt.name)
			if tt.ok {
				be.Err(t, err, nil)
				return
			}
			var acc *AccessError
			be.True(t, errors.As(err, &acc))
		})
	}
}

func TestStructLookupAndTypes(t *testing.T) {
	reg := NewRegistry()
	point := &StructDef{Module: "app:geo", Name: "Point", Access: ast.AccessPublic, Type: types.NewStruct("Point", "app:geo:Point")}
	be.Err(t, reg.AddStruct(point), nil)

	table := NewTable(reg, "app:main", []ast.Using{{Namespace: "app:geo"}})
	typ, err := table.ResolveType("Point")
	be.Err(t, err, nil)
	be.True(t, typ == point.Type)

	def, ok := reg.StructOf(typ)
	be.True(t, ok)
	be.True(t, def == point)

	_, err = table.ResolveType("Vector")
	be.True(t, errors.Is(err, types.ErrUnknownType))
}

func TestSplitQualified(t *testing.T) {
	tests := []struct{ in, ns, bare string }{
		{"f", "", "f"},
		{"geo:f", "geo", "f"},
		{"app:geo:f(Int32)", "app:geo", "f(Int32)"},
		{"Point::add(Point)", "", "Point::add(Point)"},
		{"app:Point::add(Point)", "app", "Point::add(Point)"},
		{"app:main:lib.a.Point::f(lib:b:x)", "app:main", "lib.a.Point::f(lib:b:x)"},
	}
	for _, tt := range tests {
		ns, bare := SplitQualified(tt.in)
		be.Equal(t, ns, tt.ns)
		be.Equal(t, bare, tt.bare)
	}
}

func TestScopesShadowing(t *testing.T) {
	scopes := NewScopes(0)
	fnScope := scopes.New(ScopeFunction, NoScopeID)
	inner := scopes.New(ScopeBlock, fnScope)

	be.True(t, scopes.Declare(fnScope, &Variable{Name: "x", Type: types.Int32}))
	be.Equal(t, scopes.Declare(fnScope, &Variable{Name: "x", Type: types.Int64}), false)
	be.True(t, scopes.Declare(inner, &Variable{Name: "x", Type: types.Float64}))

	v, ok := scopes.Lookup(inner, "x")
	be.True(t, ok)
	be.True(t, v.Type == types.Float64)

	v, ok = scopes.Lookup(fnScope, "x")
	be.True(t, ok)
	be.True(t, v.Type == types.Int32)

	_, ok = scopes.Lookup(fnScope, "y")
	be.Equal(t, ok, false)

	be.True(t, scopes.Encloses(fnScope, inner))
	be.Equal(t, scopes.Encloses(inner, fnScope), false)
	be.Equal(t, scopes.Len(), 2)
}

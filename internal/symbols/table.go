package symbols

import (
	"errors"
	"fmt"
	"strings"

	"rial/internal/ast"
	"rial/internal/types"
)

// Table is the per-unit view of the registry: it knows the current module,
// its project and its using imports, and applies lookup tiers and
// visibility rules on top of the registry.
type Table struct {
	Registry *Registry
	Module   string
	Project  string
	usings   []string
	aliases  map[string]string
}

// NewTable creates the lookup view for one unit.
func NewTable(reg *Registry, module string, usings []ast.Using) *Table {
	t := &Table{
		Registry: reg,
		Module:   module,
		Project:  ProjectOf(module),
		aliases:  make(map[string]string),
	}
	for _, u := range usings {
		if u.Alias != "" {
			t.aliases[u.Alias] = u.Namespace
			continue
		}
		t.usings = append(t.usings, u.Namespace)
	}
	return t
}

// Usings returns the unaliased namespaces in declaration order.
func (t *Table) Usings() []string {
	return append([]string(nil), t.usings...)
}

// CheckAccess reports whether def is visible from the current module.
// Private declarations are visible only in their own module, internal
// ones inside the same top-level project. Externals are always visible.
func (t *Table) CheckAccess(def Def) error {
	if def.DefModule() == t.Module {
		return nil
	}
	if fn, ok := def.(*FunctionDef); ok && fn.Kind == ast.FuncExternal {
		return nil
	}
	switch def.DefAccess() {
	case ast.AccessPublic:
		return nil
	case ast.AccessInternal:
		if ProjectOf(def.DefModule()) == t.Project {
			return nil
		}
	}
	return &AccessError{Kind: def.DefKind(), Key: def.DefKey(), Access: def.DefAccess(), From: t.Module}
}

func find[T Def](t *Table, kind DefKind, name string, get func(string) (T, bool)) (T, error) {
	var zero T
	name = types.NormalizeIdent(name)
	ns, bare := SplitQualified(name)

	try := func(key string) (T, bool, error) {
		def, ok := get(key)
		if !ok {
			return zero, false, nil
		}
		if err := t.CheckAccess(def); err != nil {
			return zero, true, err
		}
		return def, true, nil
	}

	var tiers []string
	if ns == "" {
		tiers = []string{name, QualifiedKey(t.Module, bare)}
	} else {
		tiers = []string{name}
		if target, ok := t.aliases[ns]; ok {
			tiers = append(tiers, QualifiedKey(target, bare))
		}
		if !strings.HasPrefix(ns, t.Project+":") && ns != t.Project {
			// неполное имя пространства считается относительно проекта
			tiers = append(tiers, QualifiedKey(QualifiedKey(t.Project, ns), bare))
		}
	}
	for _, key := range tiers {
		def, hit, err := try(key)
		if hit {
			return def, err
		}
	}
	if ns != "" {
		return zero, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	}

	var (
		hits []T
		keys []string
		seen = make(map[Def]bool)
	)
	for _, using := range t.usings {
		def, ok := get(QualifiedKey(using, bare))
		if !ok || seen[def] {
			continue
		}
		seen[def] = true
		hits = append(hits, def)
		keys = append(keys, def.DefKey())
	}
	switch len(hits) {
	case 0:
		return zero, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	case 1:
		if err := t.CheckAccess(hits[0]); err != nil {
			return zero, err
		}
		return hits[0], nil
	default:
		return zero, &AmbiguousError{Kind: kind, Name: name, Candidates: keys}
	}
}

// FindFunction resolves a mangled, possibly namespace-qualified function
// name. Tiers: exact key, current module, namespace qualifier (aliases
// expanded), then every using; more than one using hit is ambiguous.
func (t *Table) FindFunction(name string) (*FunctionDef, error) {
	return find(t, DefFunction, name, t.Registry.Function)
}

// FindStruct resolves a struct name with the same tiers as FindFunction.
func (t *Table) FindStruct(name string) (*StructDef, error) {
	return find(t, DefStruct, name, t.Registry.Struct)
}

// FindGlobal resolves a module global with the same tiers as FindFunction.
func (t *Table) FindGlobal(name string) (*GlobalDef, error) {
	return find(t, DefGlobal, name, t.Registry.Global)
}

// LookupStructType implements types.StructLookup. A missing struct yields
// (nil, nil) so the caller reports an unknown type.
func (t *Table) LookupStructType(name string) (*types.Type, error) {
	def, err := t.FindStruct(name)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return def.Type, nil
}

// ResolveType maps a type name through builtins and visible structs.
func (t *Table) ResolveType(name string) (*types.Type, error) {
	return types.Resolve(name, t)
}

package symbols

import (
	"fmt"
	"sort"
	"sync"

	"rial/internal/types"
)

// Registry holds every struct, function and global of a compilation. It
// is written concurrently by the declare pass and read-only after Freeze.
type Registry struct {
	mu      sync.RWMutex
	frozen  bool
	structs map[string]*StructDef
	funcs   map[string]*FunctionDef
	globals map[string]*GlobalDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		structs: make(map[string]*StructDef),
		funcs:   make(map[string]*FunctionDef),
		globals: make(map[string]*GlobalDef),
	}
}

// Freeze forbids further writes.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

func addDef[T Def](r *Registry, m map[string]T, def T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("add %s %q: %w", def.DefKind(), def.DefKey(), ErrFrozen)
	}
	key := types.NormalizeIdent(def.DefKey())
	if _, exists := m[key]; exists {
		return &DuplicateError{Kind: def.DefKind(), Key: key}
	}
	m[key] = def
	return nil
}

// AddStruct registers a struct under "module:Name".
func (r *Registry) AddStruct(def *StructDef) error { return addDef(r, r.structs, def) }

// AddFunction registers a function under "module:mangled", or under its
// bare name for externals.
func (r *Registry) AddFunction(def *FunctionDef) error { return addDef(r, r.funcs, def) }

// AddGlobal registers a global under "module:name".
func (r *Registry) AddGlobal(def *GlobalDef) error { return addDef(r, r.globals, def) }

// Struct returns the struct registered under key.
func (r *Registry) Struct(key string) (*StructDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.structs[types.NormalizeIdent(key)]
	return d, ok
}

// StructOf returns the definition behind a struct type.
func (r *Registry) StructOf(t *types.Type) (*StructDef, bool) {
	if !t.IsStruct() {
		return nil, false
	}
	return r.Struct(t.Full)
}

// Function returns the function registered under key.
func (r *Registry) Function(key string) (*FunctionDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.funcs[types.NormalizeIdent(key)]
	return d, ok
}

// Global returns the global registered under key.
func (r *Registry) Global(key string) (*GlobalDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.globals[types.NormalizeIdent(key)]
	return d, ok
}

// StructsOf lists the structs of a module sorted by name.
func (r *Registry) StructsOf(module string) []*StructDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*StructDef
	for _, d := range r.structs {
		if d.Module == module {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Counts returns the number of structs, functions and globals.
func (r *Registry) Counts() (structs, funcs, globals int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.structs), len(r.funcs), len(r.globals)
}

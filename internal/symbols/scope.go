package symbols

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir/value"

	"rial/internal/source"
	"rial/internal/types"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeFunction           // параметры функции
	ScopeBlock              // тело if/else, case
	ScopeLoop               // тело цикла и обёртка for
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	default:
		return "invalid"
	}
}

// Variable is a named storage location visible in a scope. Addr is always
// a pointer: an alloca, a global or, for struct parameters, the incoming
// reference itself.
type Variable struct {
	Name string
	Type *types.Type
	Addr value.Value
	Pos  source.Pos
}

// Scope models a lexical scope inside one function body.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Vars     map[string]*Variable
	Names    []string // порядок объявления
	Children []ScopeID
}

// Scopes stores all scopes of a function in a slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with an optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 16
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.data = append(s.data, Scope{
		Kind:   kind,
		Parent: parent,
		Vars:   make(map[string]*Variable),
	})
	if parentScope := s.Get(parent); parentScope != nil {
		parentScope.Children = append(parentScope.Children, id)
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len returns the number of allocated scopes.
func (s *Scopes) Len() int {
	return len(s.data) - 1
}

// Declare binds v in scope id. It reports false when the name is already
// declared in that same scope; shadowing an outer scope is allowed.
func (s *Scopes) Declare(id ScopeID, v *Variable) bool {
	scope := s.Get(id)
	if scope == nil {
		return false
	}
	name := types.NormalizeIdent(v.Name)
	if _, exists := scope.Vars[name]; exists {
		return false
	}
	scope.Vars[name] = v
	scope.Names = append(scope.Names, name)
	return true
}

// Lookup walks from id up to the function scope and returns the nearest
// variable called name.
func (s *Scopes) Lookup(id ScopeID, name string) (*Variable, bool) {
	name = types.NormalizeIdent(name)
	for scope := s.Get(id); scope != nil; scope = s.Get(scope.Parent) {
		if v, ok := scope.Vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Encloses reports whether outer is id or one of its ancestors.
func (s *Scopes) Encloses(outer, id ScopeID) bool {
	for cur := id; cur.IsValid(); {
		if cur == outer {
			return true
		}
		scope := s.Get(cur)
		if scope == nil {
			return false
		}
		cur = scope.Parent
	}
	return false
}

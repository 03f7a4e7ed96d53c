package ast

import (
	"rial/internal/source"
)

// Access is the declared visibility of a function, struct or global.
type Access uint8

const (
	// AccessPrivate is visible only inside the declaring module.
	AccessPrivate Access = iota
	// AccessInternal is visible inside the declaring top-level project.
	AccessInternal
	// AccessPublic is visible everywhere.
	AccessPublic
)

func (a Access) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessInternal:
		return "internal"
	case AccessPublic:
		return "public"
	default:
		return "unknown"
	}
}

// ParseAccess maps a modifier keyword onto Access.
func ParseAccess(s string) (Access, bool) {
	switch s {
	case "private":
		return AccessPrivate, true
	case "internal":
		return AccessInternal, true
	case "public":
		return AccessPublic, true
	}
	return AccessPrivate, false
}

// Unit is one compilation unit as produced by the parser: a module name,
// its using imports and top-level declarations.
type Unit struct {
	Module string     `msgpack:"module"`
	Source string     `msgpack:"source,omitempty"` // путь к исходнику .rial, только для сообщений
	Usings []Using    `msgpack:"usings,omitempty"`
	Decls  []*Decl    `msgpack:"decls"`
	Pos    source.Pos `msgpack:"pos"`
}

// Using adds a namespace to the search path of unqualified names. With an
// alias the namespace is reachable as "alias:name" instead.
type Using struct {
	Namespace string     `msgpack:"ns"`
	Alias     string     `msgpack:"alias,omitempty"`
	Pos       source.Pos `msgpack:"pos"`
}

// DeclKind enumerates top-level declaration kinds.
type DeclKind uint8

const (
	// DeclFunc is a free, extension or external function.
	DeclFunc DeclKind = iota
	// DeclStruct is a struct with its fields, constructors and methods.
	DeclStruct
	// DeclGlobal is a module-level constant variable.
	DeclGlobal
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunc:
		return "Func"
	case DeclStruct:
		return "Struct"
	case DeclGlobal:
		return "Global"
	default:
		return "Unknown"
	}
}

// Decl is a top-level declaration. Exactly one of the payload pointers
// matching Kind is set.
type Decl struct {
	Kind   DeclKind    `msgpack:"kind"`
	Func   *FuncDecl   `msgpack:"func,omitempty"`
	Struct *StructDecl `msgpack:"struct,omitempty"`
	Global *GlobalDecl `msgpack:"global,omitempty"`
}

// Pos returns the position of the payload.
func (d *Decl) Pos() source.Pos {
	switch {
	case d.Func != nil:
		return d.Func.Pos
	case d.Struct != nil:
		return d.Struct.Pos
	case d.Global != nil:
		return d.Global.Pos
	}
	return source.NoPos
}

// FuncKind says how a function is called and mangled.
type FuncKind uint8

const (
	// FuncFree is a plain function.
	FuncFree FuncKind = iota
	// FuncMethod is declared inside a struct and receives `this` first.
	FuncMethod
	// FuncConstructor is declared inside a struct and receives the storage
	// being initialized as a hidden last parameter.
	FuncConstructor
	// FuncExtension attaches a method to a builtin type (Receiver).
	FuncExtension
	// FuncExternal has no body and keeps its bare, unmangled name.
	FuncExternal
)

func (k FuncKind) String() string {
	switch k {
	case FuncFree:
		return "free"
	case FuncMethod:
		return "method"
	case FuncConstructor:
		return "ctor"
	case FuncExtension:
		return "extension"
	case FuncExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Param is a named, typed function parameter.
type Param struct {
	Name string     `msgpack:"name"`
	Type string     `msgpack:"type"`
	Pos  source.Pos `msgpack:"pos"`
}

// FuncDecl describes a function. FullName is empty on input and is filled
// by the declare pass with the mangled name the body attaches to.
type FuncDecl struct {
	Name     string     `msgpack:"name"`
	FullName string     `msgpack:"full_name,omitempty"`
	Kind     FuncKind   `msgpack:"kind"`
	Access   Access     `msgpack:"access"`
	Receiver string     `msgpack:"receiver,omitempty"` // тип-получатель для FuncExtension
	Params   []Param    `msgpack:"params,omitempty"`
	Return   string     `msgpack:"ret,omitempty"` // "" означает void
	Variadic bool       `msgpack:"variadic,omitempty"`
	Body     []*Stmt    `msgpack:"body,omitempty"`
	Pos      source.Pos `msgpack:"pos"`
}

// ReturnType returns the declared return type name, defaulting to void.
func (f *FuncDecl) ReturnType() string {
	if f.Return == "" {
		return "void"
	}
	return f.Return
}

// ArgTypes lists the declared parameter type names.
func (f *FuncDecl) ArgTypes() []string {
	out := make([]string, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out
}

// Field is a struct field.
type Field struct {
	Name string     `msgpack:"name"`
	Type string     `msgpack:"type"`
	Pos  source.Pos `msgpack:"pos"`
}

// StructDecl describes a struct. Bases are interface-like: they contribute
// methods for overload fallback but never fields.
type StructDecl struct {
	Name     string      `msgpack:"name"`
	FullName string      `msgpack:"full_name,omitempty"`
	Access   Access      `msgpack:"access"`
	Bases    []string    `msgpack:"bases,omitempty"`
	Fields   []Field     `msgpack:"fields,omitempty"`
	Methods  []*FuncDecl `msgpack:"methods,omitempty"`
	Pos      source.Pos  `msgpack:"pos"`
}

// GlobalDecl is a module-level variable with a constant initializer.
type GlobalDecl struct {
	Name   string     `msgpack:"name"`
	Access Access     `msgpack:"access"`
	Type   string     `msgpack:"type,omitempty"` // пусто: тип из инициализатора
	Value  *Expr      `msgpack:"value"`
	Pos    source.Pos `msgpack:"pos"`
}

package symbols

import (
	"strings"

	"github.com/llir/llvm/ir/constant"

	"rial/internal/ast"
	"rial/internal/source"
	"rial/internal/types"
)

// DefKind classifies registry entries.
type DefKind uint8

const (
	DefInvalid DefKind = iota
	DefStruct
	DefFunction
	DefGlobal
)

func (k DefKind) String() string {
	switch k {
	case DefStruct:
		return "struct"
	case DefFunction:
		return "function"
	case DefGlobal:
		return "global"
	default:
		return "invalid"
	}
}

// Def is the common view of a registry entry used by visibility checks.
type Def interface {
	DefKind() DefKind
	DefModule() string
	DefAccess() ast.Access
	DefKey() string
}

// FieldDef is one field of a struct layout.
type FieldDef struct {
	Name  string
	Type  *types.Type
	Index int
	Pos   source.Pos
}

// StructDef is a declared struct. Type is created in the shell pass and
// receives its fields and bases in the signature pass.
type StructDef struct {
	Module string
	Name   string
	Access ast.Access
	Type   *types.Type
	Fields []FieldDef
	Decl   *ast.StructDecl
}

func (d *StructDef) DefKind() DefKind      { return DefStruct }
func (d *StructDef) DefModule() string     { return d.Module }
func (d *StructDef) DefAccess() ast.Access { return d.Access }
func (d *StructDef) DefKey() string        { return QualifiedKey(d.Module, d.Name) }

// Field finds a field by name.
func (d *StructDef) Field(name string) (FieldDef, bool) {
	name = types.NormalizeIdent(name)
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// FunctionDef is a declared function signature.
type FunctionDef struct {
	Module  string
	Name    string // имя без декорирования
	Mangled string
	Kind    ast.FuncKind
	Access  ast.Access
	// Receiver is the struct of a method or constructor, or the builtin
	// type of an extension function.
	Receiver *types.Type
	Params   []*types.Type // без скрытых this
	Return   *types.Type
	Variadic bool
	Decl     *ast.FuncDecl
}

func (d *FunctionDef) DefKind() DefKind      { return DefFunction }
func (d *FunctionDef) DefModule() string     { return d.Module }
func (d *FunctionDef) DefAccess() ast.Access { return d.Access }

// DefKey is the registry key. Externals keep their bare name since they
// are resolved by the linker, not by module.
func (d *FunctionDef) DefKey() string {
	if d.Kind == ast.FuncExternal {
		return d.Name
	}
	return QualifiedKey(d.Module, d.Mangled)
}

// IRName is the backend symbol name.
func (d *FunctionDef) IRName() string {
	if d.Kind == ast.FuncExternal || (d.Kind == ast.FuncFree && d.Name == "main" && len(d.Params) == 0) {
		return d.Name
	}
	return d.DefKey()
}

// HasThis reports whether calls pass a receiver reference: first for
// methods and extensions, last for constructors.
func (d *FunctionDef) HasThis() bool {
	return d.Kind == ast.FuncMethod || d.Kind == ast.FuncExtension || d.Kind == ast.FuncConstructor
}

// GlobalDef is a module-level constant.
type GlobalDef struct {
	Module string
	Name   string
	Access ast.Access
	Type   *types.Type
	Init   constant.Constant
	Decl   *ast.GlobalDecl
}

func (d *GlobalDef) DefKind() DefKind      { return DefGlobal }
func (d *GlobalDef) DefModule() string     { return d.Module }
func (d *GlobalDef) DefAccess() ast.Access { return d.Access }
func (d *GlobalDef) DefKey() string        { return QualifiedKey(d.Module, d.Name) }

// QualifiedKey joins a module and a name with ':'.
func QualifiedKey(module, name string) string {
	if module == "" {
		return name
	}
	return module + ":" + name
}

// SplitQualified separates "ns:name" into its namespace and bare name.
// Only single colons outside the argument list count, so mangled names
// like "Point::add(Point)" survive intact.
func SplitQualified(name string) (ns, bare string) {
	end := len(name)
	if i := strings.IndexByte(name, '('); i >= 0 {
		end = i
	}
	for i := end - 1; i >= 0; i-- {
		if name[i] != ':' {
			continue
		}
		if (i > 0 && name[i-1] == ':') || (i+1 < len(name) && name[i+1] == ':') {
			continue
		}
		return name[:i], name[i+1:]
	}
	return "", name
}

// ProjectOf returns the top-level project of a module name.
func ProjectOf(module string) string {
	if i := strings.IndexByte(module, ':'); i >= 0 {
		return module[:i]
	}
	return module
}

package types

import (
	"fmt"
	"slices"

	irtypes "github.com/llir/llvm/ir/types"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindUint
	KindFloat
	KindChar
	KindCString
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindCString:
		return "cstring"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width1   Width = 1
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type describes a rial type together with its backend representation.
// Builtin types are package-level singletons; struct types are created once
// by the declare pass and compared by pointer.
type Type struct {
	Kind  Kind
	Width Width
	// Name is the canonical spelling used in mangled names: "Int32",
	// "CString" or the bare struct name.
	Name string
	// Full is the module-qualified struct name; equal to Name for builtins.
	Full string
	IR   irtypes.Type
	// Bases lists direct base structs in declaration order.
	Bases []*Type
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

func (t *Type) IsVoid() bool   { return t != nil && t.Kind == KindVoid }
func (t *Type) IsBool() bool   { return t != nil && t.Kind == KindBool }
func (t *Type) IsFloat() bool  { return t != nil && t.Kind == KindFloat }
func (t *Type) IsStruct() bool { return t != nil && t.Kind == KindStruct }

// IsInteger covers signed, unsigned and char types.
func (t *Type) IsInteger() bool {
	return t != nil && (t.Kind == KindInt || t.Kind == KindUint || t.Kind == KindChar)
}

// IsSigned reports whether integer operations on t use signed semantics.
func (t *Type) IsSigned() bool {
	return t != nil && t.Kind == KindInt
}

// IsNumeric covers integers and floats.
func (t *Type) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}

// StructIR returns the backend struct type of a struct type.
func (t *Type) StructIR() *irtypes.StructType {
	if !t.IsStruct() {
		return nil
	}
	st, _ := t.IR.(*irtypes.StructType)
	return st
}

// ParamIR is the backend type used when t crosses a call boundary as an
// argument: structs travel by reference.
func (t *Type) ParamIR() irtypes.Type {
	if t.IsStruct() {
		return irtypes.NewPointer(t.IR)
	}
	return t.IR
}

// HasBase reports whether base is reachable through t's base list.
func (t *Type) HasBase(base *Type) bool {
	if !t.IsStruct() || !base.IsStruct() {
		return false
	}
	seen := map[*Type]bool{}
	queue := slices.Clone(t.Bases)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if b == base {
			return true
		}
		if seen[b] {
			continue
		}
		seen[b] = true
		queue = append(queue, b.Bases...)
	}
	return false
}

// NewStruct creates an opaque struct type; fields are attached later with
// SetFields once every struct of the compilation is known.
func NewStruct(name, full string) *Type {
	st := &irtypes.StructType{TypeName: full, Opaque: true}
	return &Type{Kind: KindStruct, Name: name, Full: full, IR: st}
}

// SetFields fills the layout of a struct created by NewStruct. Struct
// fields are embedded by value.
func (t *Type) SetFields(fields []*Type) {
	st := t.StructIR()
	st.Fields = make([]irtypes.Type, len(fields))
	for i, f := range fields {
		st.Fields[i] = f.IR
	}
	st.Opaque = false
}

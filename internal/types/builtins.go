package types

import (
	"errors"
	"fmt"
	"strings"

	irtypes "github.com/llir/llvm/ir/types"
)

var (
	Void    = &Type{Kind: KindVoid, Name: "void", Full: "void", IR: irtypes.Void}
	Boolean = &Type{Kind: KindBool, Width: Width1, Name: "Boolean", Full: "Boolean", IR: irtypes.I1}
	Int8    = &Type{Kind: KindInt, Width: Width8, Name: "Int8", Full: "Int8", IR: irtypes.I8}
	Int16   = &Type{Kind: KindInt, Width: Width16, Name: "Int16", Full: "Int16", IR: irtypes.I16}
	Int32   = &Type{Kind: KindInt, Width: Width32, Name: "Int32", Full: "Int32", IR: irtypes.I32}
	Int64   = &Type{Kind: KindInt, Width: Width64, Name: "Int64", Full: "Int64", IR: irtypes.I64}
	UInt8   = &Type{Kind: KindUint, Width: Width8, Name: "UInt8", Full: "UInt8", IR: irtypes.I8}
	UInt16  = &Type{Kind: KindUint, Width: Width16, Name: "UInt16", Full: "UInt16", IR: irtypes.I16}
	UInt32  = &Type{Kind: KindUint, Width: Width32, Name: "UInt32", Full: "UInt32", IR: irtypes.I32}
	UInt64  = &Type{Kind: KindUint, Width: Width64, Name: "UInt64", Full: "UInt64", IR: irtypes.I64}
	Float32 = &Type{Kind: KindFloat, Width: Width32, Name: "Float32", Full: "Float32", IR: irtypes.Float}
	Float64 = &Type{Kind: KindFloat, Width: Width64, Name: "Float64", Full: "Float64", IR: irtypes.Double}
	Char    = &Type{Kind: KindChar, Width: Width8, Name: "Char", Full: "Char", IR: irtypes.I8}
	CString = &Type{Kind: KindCString, Name: "CString", Full: "CString", IR: irtypes.NewPointer(irtypes.I8)}
)

var builtinTypes = map[string]*Type{
	"void":    Void,
	"Boolean": Boolean,
	"Int8":    Int8,
	"Int16":   Int16,
	"Int32":   Int32,
	"Int64":   Int64,
	"UInt8":   UInt8,
	"UInt16":  UInt16,
	"UInt32":  UInt32,
	"UInt64":  UInt64,
	"Float32": Float32,
	"Float64": Float64,
	"Char":    Char,
	"CString": CString,

	// короткие псевдонимы
	"int":    Int32,
	"long":   Int64,
	"short":  Int16,
	"byte":   UInt8,
	"float":  Float32,
	"double": Float64,
	"bool":   Boolean,
	"char":   Char,
	"string": CString,
}

// ErrUnknownType is returned (wrapped) when a type name resolves to nothing.
var ErrUnknownType = errors.New("unknown type")

// StructLookup resolves struct type names for Resolve.
type StructLookup interface {
	LookupStructType(name string) (*Type, error)
}

// Builtin returns the builtin type spelled name, following aliases.
func Builtin(name string) (*Type, bool) {
	t, ok := builtinTypes[name]
	return t, ok
}

// IsBuiltinName reports whether name spells a builtin type or alias.
func IsBuiltinName(name string) bool {
	_, ok := builtinTypes[name]
	return ok
}

// Resolve maps a type name to its Type. Builtins win over structs; other
// names go through structs, whose own errors (ambiguity, access) are
// returned unchanged.
func Resolve(name string, structs StructLookup) (*Type, error) {
	name = strings.TrimSpace(name)
	if t, ok := builtinTypes[name]; ok {
		return t, nil
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty type name", ErrUnknownType)
	}
	if structs != nil {
		t, err := structs.LookupStructType(name)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
}

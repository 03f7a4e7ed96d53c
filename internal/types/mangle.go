package types

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeIdent brings an identifier to NFC so that canonically equivalent
// spellings produce the same symbol keys.
func NormalizeIdent(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Mangle encodes a function name with its receiver and argument types:
//
//	add(Int32,Int32)                free function
//	app.main.Point::add(Int32)      method on app:main:Point
//
// The receiver is not repeated in the argument list. Two functions are
// overload-compatible only if name, receiver and every argument type match.
func Mangle(name, receiver string, args []string) string {
	var sb strings.Builder
	if receiver != "" {
		sb.WriteString(NormalizeIdent(receiver))
		sb.WriteString("::")
	}
	sb.WriteString(NormalizeIdent(name))
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(NormalizeIdent(a))
	}
	sb.WriteByte(')')
	return sb.String()
}

// MangledName is the spelling of t inside mangled names. Builtins use their
// canonical name; structs use the module-qualified name with dots, so
// lib:a:Point and lib:b:Point stay distinct while the key still splits on
// its single colons.
func (t *Type) MangledName() string {
	if t.Kind != KindStruct || t.Full == "" {
		return t.Name
	}
	return strings.ReplaceAll(t.Full, ":", ".")
}

// MangleTypes is Mangle over resolved types.
func MangleTypes(name string, receiver *Type, args []*Type) string {
	recv := ""
	if receiver != nil {
		recv = receiver.MangledName()
	}
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.MangledName()
	}
	return Mangle(name, recv, names)
}

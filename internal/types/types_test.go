package types

import (
	"errors"
	"testing"

	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"

	"rial/internal/ast"
)

type structMap map[string]*Type

func (m structMap) LookupStructType(name string) (*Type, error) {
	return m[name], nil
}

func TestResolveBuiltinsAndAliases(t *testing.T) {
	tests := []struct {
		name string
		want *Type
	}{
		{"Int32", Int32},
		{"int", Int32},
		{"long", Int64},
		{"short", Int16},
		{"byte", UInt8},
		{"float", Float32},
		{"double", Float64},
		{"bool", Boolean},
		{"char", Char},
		{"string", CString},
		{"void", Void},
		{" UInt16 ", UInt16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.name, nil)
			be.Err(t, err, nil)
			be.True(t, got == tt.want)
		})
	}
}

func TestResolveStructsAndUnknown(t *testing.T) {
	point := NewStruct("Point", "app:main:Point")
	structs := structMap{"Point": point}

	got, err := Resolve("Point", structs)
	be.Err(t, err, nil)
	be.True(t, got == point)

	_, err = Resolve("Vector", structs)
	be.True(t, errors.Is(err, ErrUnknownType))

	_, err = Resolve("", structs)
	be.True(t, errors.Is(err, ErrUnknownType))
}

func TestStructLayoutAndParams(t *testing.T) {
	point := NewStruct("Point", "app:main:Point")
	be.True(t, point.StructIR().Opaque)

	point.SetFields([]*Type{Int32, Int32})
	st := point.StructIR()
	be.Equal(t, st.Opaque, false)
	be.Equal(t, len(st.Fields), 2)
	be.True(t, st.Fields[0] == irtypes.I32)

	ptr, ok := point.ParamIR().(*irtypes.PointerType)
	be.True(t, ok)
	be.True(t, ptr.ElemType == point.IR)
	be.True(t, Int64.ParamIR() == irtypes.I64)
}

func TestHasBaseFollowsChains(t *testing.T) {
	a := NewStruct("A", "m:A")
	b := NewStruct("B", "m:B")
	c := NewStruct("C", "m:C")
	b.Bases = []*Type{a}
	c.Bases = []*Type{b}

	be.True(t, c.HasBase(b))
	be.True(t, c.HasBase(a))
	be.Equal(t, a.HasBase(c), false)
	be.Equal(t, c.HasBase(Int32), false)
}

func TestMangle(t *testing.T) {
	tests := []struct {
		name, recv string
		args       []string
		want       string
	}{
		{"main", "", nil, "main()"},
		{"add", "", []string{"Int32", "Int32"}, "add(Int32,Int32)"},
		{"add", "Point", []string{"Point"}, "Point::add(Point)"},
		// e + U+0301 сворачивается в é
		{"cafe\u0301", "", nil, "caf\u00e9()"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			be.Equal(t, Mangle(tt.name, tt.recv, tt.args), tt.want)
		})
	}

	point := NewStruct("Point", "app:main:Point")
	be.Equal(t, MangleTypes("scale", point, []*Type{Float64}), "app.main.Point::scale(Float64)")
	be.Equal(t, MangleTypes("twice", Int32, nil), "Int32::twice()")

	a := NewStruct("Point", "lib:a:Point")
	b := NewStruct("Point", "lib:b:Point")
	be.Equal(t, MangleTypes("f", nil, []*Type{a}), "f(lib.a.Point)")
	be.True(t, MangleTypes("f", nil, []*Type{a}) != MangleTypes("f", nil, []*Type{b}))
	be.True(t, MangleTypes("f", a, nil) != MangleTypes("f", b, nil))
}

func TestCast(t *testing.T) {
	base := NewStruct("Base", "m:Base")
	derived := NewStruct("Derived", "m:Derived")
	derived.Bases = []*Type{base}

	tests := []struct {
		from, to *Type
		want     CastOp
	}{
		{Int32, Int32, CastNone},
		{Int8, Int64, CastSExt},
		{UInt8, Int64, CastZExt},
		{Char, Int32, CastZExt},
		{Boolean, Int32, CastZExt},
		{Int64, Int16, CastTrunc},
		{Int32, UInt32, CastNone},
		{Int32, Float64, CastSIToFP},
		{UInt32, Float32, CastUIToFP},
		{Float64, Int32, CastFPToSI},
		{Float32, UInt8, CastFPToUI},
		{Float32, Float64, CastFPExt},
		{Float64, Float32, CastFPTrunc},
		{CString, CString, CastNone},
		{derived, base, CastBitCast},
	}
	for _, tt := range tests {
		t.Run(tt.from.Name+"->"+tt.to.Name, func(t *testing.T) {
			op, err := Cast(tt.from, tt.to)
			be.Err(t, err, nil)
			be.Equal(t, op, tt.want)
		})
	}

	invalid := [][2]*Type{
		{base, derived},
		{Int32, Boolean},
		{CString, Int32},
		{Float64, base},
	}
	for _, pair := range invalid {
		_, err := Cast(pair[0], pair[1])
		be.True(t, errors.Is(err, ErrInvalidCast))
	}
}

func TestApplyEmitsOneInstruction(t *testing.T) {
	f := ir.NewFunc("f", irtypes.Void, ir.NewParam("x", irtypes.I8))
	b := f.NewBlock("entry")

	v := Apply(b, CastSExt, f.Params[0], Int32)
	be.Equal(t, len(b.Insts), 1)
	be.True(t, v.Type().Equal(irtypes.I32))

	same := Apply(b, CastNone, f.Params[0], Int8)
	be.True(t, same == f.Params[0])
	be.Equal(t, len(b.Insts), 1)
}

func TestBinaryOperands(t *testing.T) {
	tests := []struct {
		name   string
		op     ast.BinaryOp
		l, r   *Type
		want   *Type
		result *Type
		ok     bool
	}{
		{"same int", ast.BinAdd, Int32, Int32, Int32, Int32, true},
		{"widen int", ast.BinMul, Int8, Int64, Int64, Int64, true},
		{"int with float", ast.BinSub, Int32, Float32, Float32, Float32, true},
		{"float widths", ast.BinDiv, Float32, Float64, Float64, Float64, true},
		{"compare", ast.BinLt, Int32, Int32, Int32, Boolean, true},
		{"bool equality", ast.BinEq, Boolean, Boolean, Boolean, Boolean, true},
		{"bool arithmetic", ast.BinAdd, Boolean, Boolean, nil, nil, false},
		{"logical ints", ast.BinAnd, Int32, Int32, nil, nil, false},
		{"string add", ast.BinAdd, CString, CString, nil, nil, false},
		{"bool vs int", ast.BinEq, Boolean, Int32, nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BinaryOperands(tt.op, tt.l, tt.r)
			be.Equal(t, ok, tt.ok)
			if !ok {
				return
			}
			be.True(t, got == tt.want)
			be.True(t, ResultOf(tt.op, got) == tt.result)
		})
	}
}

func TestLiteralRanges(t *testing.T) {
	be.True(t, IntLiteralType(42) == Int32)
	be.True(t, IntLiteralType(-2147483648) == Int32)
	be.True(t, IntLiteralType(2147483648) == Int64)

	be.True(t, FitsInt(Int8, 127))
	be.Equal(t, FitsInt(Int8, 128), false)
	be.True(t, FitsInt(UInt8, 255))
	be.Equal(t, FitsInt(UInt32, -1), false)
	be.True(t, FitsInt(Int64, -1<<62))
	be.Equal(t, FitsInt(Float32, 1), false)
}

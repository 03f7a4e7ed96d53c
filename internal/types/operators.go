package types

import (
	"fortio.org/safecast"

	"rial/internal/ast"
)

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint16

const (
	FamilyNone FamilyMask = 0
	FamilyBool FamilyMask = 1 << iota
	FamilySignedInt
	FamilyUnsignedInt
	FamilyChar
	FamilyFloat
)

const (
	FamilyIntegral = FamilySignedInt | FamilyUnsignedInt | FamilyChar
	FamilyNumeric  = FamilyIntegral | FamilyFloat
)

// Family returns the family bit of t.
func Family(t *Type) FamilyMask {
	if t == nil {
		return FamilyNone
	}
	switch t.Kind {
	case KindBool:
		return FamilyBool
	case KindInt:
		return FamilySignedInt
	case KindUint:
		return FamilyUnsignedInt
	case KindChar:
		return FamilyChar
	case KindFloat:
		return FamilyFloat
	}
	return FamilyNone
}

// BinarySpec lists the operand families an operator accepts and whether
// it yields a Boolean.
type BinarySpec struct {
	Operands   FamilyMask
	BoolResult bool
}

var binarySpecs = map[ast.BinaryOp]BinarySpec{
	ast.BinAdd: {Operands: FamilyNumeric},
	ast.BinSub: {Operands: FamilyNumeric},
	ast.BinMul: {Operands: FamilyNumeric},
	ast.BinDiv: {Operands: FamilyNumeric},
	ast.BinRem: {Operands: FamilyNumeric},
	ast.BinLt:  {Operands: FamilyNumeric, BoolResult: true},
	ast.BinGt:  {Operands: FamilyNumeric, BoolResult: true},
	ast.BinLe:  {Operands: FamilyNumeric, BoolResult: true},
	ast.BinGe:  {Operands: FamilyNumeric, BoolResult: true},
	ast.BinEq:  {Operands: FamilyNumeric | FamilyBool, BoolResult: true},
	ast.BinNe:  {Operands: FamilyNumeric | FamilyBool, BoolResult: true},
	ast.BinAnd: {Operands: FamilyBool, BoolResult: true},
	ast.BinOr:  {Operands: FamilyBool, BoolResult: true},
}

// BinaryOperands decides the common operand type of a binary operator.
// Equal types are used as-is; otherwise the narrower integer is widened,
// and an integer mixed with a float converts to the float type. The
// result is false when the operator does not accept the operands.
func BinaryOperands(op ast.BinaryOp, l, r *Type) (*Type, bool) {
	spec, ok := binarySpecs[op]
	if !ok {
		return nil, false
	}
	if Family(l)&spec.Operands == 0 || Family(r)&spec.Operands == 0 {
		return nil, false
	}
	common, ok := Promote(l, r)
	if !ok {
		return nil, false
	}
	return common, true
}

// ResultOf returns the type produced by op over operands of type common.
func ResultOf(op ast.BinaryOp, common *Type) *Type {
	if binarySpecs[op].BoolResult {
		return Boolean
	}
	return common
}

// Promote finds the common type of two operands.
func Promote(a, b *Type) (*Type, bool) {
	switch {
	case a == b:
		return a, true
	case a.IsFloat() && b.IsFloat():
		if a.Width >= b.Width {
			return a, true
		}
		return b, true
	case a.IsFloat() && b.IsInteger():
		return a, true
	case a.IsInteger() && b.IsFloat():
		return b, true
	case a.IsInteger() && b.IsInteger():
		if a.Width == b.Width {
			// одинаковая ширина, разная знаковость: знаковый выигрывает
			if a.IsSigned() {
				return a, true
			}
			return b, true
		}
		if a.Width > b.Width {
			return a, true
		}
		return b, true
	}
	return nil, false
}

// IntLiteralType picks the default type of an unsuffixed integer literal:
// Int32 when the value fits, Int64 otherwise.
func IntLiteralType(v int64) *Type {
	if _, err := safecast.Conv[int32](v); err == nil {
		return Int32
	}
	return Int64
}

// FitsInt reports whether v is representable in the integer type t.
func FitsInt(t *Type, v int64) bool {
	var err error
	switch t {
	case Int8:
		_, err = safecast.Conv[int8](v)
	case Int16:
		_, err = safecast.Conv[int16](v)
	case Int32:
		_, err = safecast.Conv[int32](v)
	case Int64:
		return true
	case UInt8, Char:
		_, err = safecast.Conv[uint8](v)
	case UInt16:
		_, err = safecast.Conv[uint16](v)
	case UInt32:
		_, err = safecast.Conv[uint32](v)
	case UInt64:
		_, err = safecast.Conv[uint64](v)
	default:
		return false
	}
	return err == nil
}

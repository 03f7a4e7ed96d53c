package types

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// CastOp is the backend operation that converts between two types.
type CastOp uint8

const (
	CastNone CastOp = iota // представление не меняется
	CastSExt
	CastZExt
	CastTrunc
	CastSIToFP
	CastUIToFP
	CastFPToSI
	CastFPToUI
	CastFPExt
	CastFPTrunc
	CastBitCast // указатель в указатель, структура в базовую
)

func (op CastOp) String() string {
	switch op {
	case CastNone:
		return "none"
	case CastSExt:
		return "sext"
	case CastZExt:
		return "zext"
	case CastTrunc:
		return "trunc"
	case CastSIToFP:
		return "sitofp"
	case CastUIToFP:
		return "uitofp"
	case CastFPToSI:
		return "fptosi"
	case CastFPToUI:
		return "fptoui"
	case CastFPExt:
		return "fpext"
	case CastFPTrunc:
		return "fptrunc"
	case CastBitCast:
		return "bitcast"
	default:
		return fmt.Sprintf("CastOp(%d)", op)
	}
}

// ErrInvalidCast is returned (wrapped) by Cast for unsupported conversions.
var ErrInvalidCast = errors.New("invalid cast")

// Cast decides how a value of type from becomes a value of type to.
//
// Supported: integer widening (sign- or zero-extending by the source's
// signedness) and narrowing, int<->float, float widening/narrowing,
// Boolean to integer, CString to CString and a struct reference to the
// reference of one of its bases.
func Cast(from, to *Type) (CastOp, error) {
	if from == nil || to == nil {
		return CastNone, fmt.Errorf("%w: missing type", ErrInvalidCast)
	}
	if from == to {
		return CastNone, nil
	}
	switch {
	case (from.IsInteger() || from.IsBool()) && to.IsInteger():
		switch {
		case from.Width < to.Width:
			if from.IsSigned() {
				return CastSExt, nil
			}
			return CastZExt, nil
		case from.Width > to.Width:
			return CastTrunc, nil
		default:
			return CastNone, nil
		}
	case from.IsInteger() && to.IsFloat():
		if from.IsSigned() {
			return CastSIToFP, nil
		}
		return CastUIToFP, nil
	case from.IsFloat() && to.IsInteger():
		if to.IsSigned() {
			return CastFPToSI, nil
		}
		return CastFPToUI, nil
	case from.IsFloat() && to.IsFloat():
		if from.Width < to.Width {
			return CastFPExt, nil
		}
		return CastFPTrunc, nil
	case from.Kind == KindCString && to.Kind == KindCString:
		return CastNone, nil
	case from.IsStruct() && to.IsStruct() && from.HasBase(to):
		return CastBitCast, nil
	}
	return CastNone, fmt.Errorf("%w from %s to %s", ErrInvalidCast, from, to)
}

// Apply emits op on v into b. Struct casts operate on references, so the
// result type of a bitcast between structs is a pointer to the target.
func Apply(b *ir.Block, op CastOp, v value.Value, to *Type) value.Value {
	switch op {
	case CastSExt:
		return b.NewSExt(v, to.IR)
	case CastZExt:
		return b.NewZExt(v, to.IR)
	case CastTrunc:
		return b.NewTrunc(v, to.IR)
	case CastSIToFP:
		return b.NewSIToFP(v, to.IR)
	case CastUIToFP:
		return b.NewUIToFP(v, to.IR)
	case CastFPToSI:
		return b.NewFPToSI(v, to.IR)
	case CastFPToUI:
		return b.NewFPToUI(v, to.IR)
	case CastFPExt:
		return b.NewFPExt(v, to.IR)
	case CastFPTrunc:
		return b.NewFPTrunc(v, to.IR)
	case CastBitCast:
		return b.NewBitCast(v, to.ParamIR())
	default:
		return v
	}
}

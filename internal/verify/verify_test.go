package verify

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

func TestValidFunction(t *testing.T) {
	m := ir.NewModule()
	fn := m.NewFunc("max", types.I32, ir.NewParam("a", types.I32), ir.NewParam("b", types.I32))
	entry := fn.NewBlock("entry")
	then := fn.NewBlock("ternary.then")
	els := fn.NewBlock("ternary.else")
	end := fn.NewBlock("ternary.end")

	slot := entry.NewAlloca(types.I32)
	entry.NewStore(fn.Params[0], slot)
	cond := entry.NewICmp(enum.IPredSGT, fn.Params[0], fn.Params[1])
	entry.NewCondBr(cond, then, els)
	then.NewBr(end)
	els.NewBr(end)
	phi := end.NewPhi(ir.NewIncoming(fn.Params[0], then), ir.NewIncoming(fn.Params[1], els))
	end.NewRet(phi)

	be.Err(t, Module(m), nil)
}

func TestDeclarationsPass(t *testing.T) {
	m := ir.NewModule()
	m.NewFunc("puts", types.I32, ir.NewParam("s", types.I8Ptr))
	be.Err(t, Module(m), nil)
}

func TestViolations(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *ir.Module)
		want  string
	}{
		{
			name: "unterminated",
			build: func(m *ir.Module) {
				fn := m.NewFunc("f", types.Void)
				fn.NewBlock("entry")
			},
			want: "entry: unterminated block",
		},
		{
			name: "foreign_target",
			build: func(m *ir.Module) {
				other := m.NewFunc("g", types.Void)
				stray := other.NewBlock("stray")
				stray.NewRet(nil)
				fn := m.NewFunc("f", types.Void)
				fn.NewBlock("entry").NewBr(stray)
			},
			want: "branch to foreign block stray",
		},
		{
			name: "duplicate_name",
			build: func(m *ir.Module) {
				fn := m.NewFunc("f", types.Void)
				a := fn.NewBlock("loop.body")
				b := fn.NewBlock("loop.body")
				a.NewBr(b)
				b.NewRet(nil)
			},
			want: "duplicate block name",
		},
		{
			name: "phi_bad_pred",
			build: func(m *ir.Module) {
				fn := m.NewFunc("f", types.I32)
				entry := fn.NewBlock("entry")
				side := fn.NewBlock("side")
				end := fn.NewBlock("end")
				entry.NewBr(end)
				side.NewUnreachable()
				phi := end.NewPhi(ir.NewIncoming(constant.NewInt(types.I32, 1), side))
				end.NewRet(phi)
			},
			want: "not a predecessor",
		},
		{
			name: "late_alloca",
			build: func(m *ir.Module) {
				fn := m.NewFunc("f", types.Void)
				entry := fn.NewBlock("entry")
				body := fn.NewBlock("body")
				entry.NewBr(body)
				body.NewAlloca(types.I64)
				body.NewRet(nil)
			},
			want: "alloca outside entry block",
		},
		{
			name: "ret_mismatch",
			build: func(m *ir.Module) {
				fn := m.NewFunc("f", types.I32)
				fn.NewBlock("entry").NewRet(nil)
			},
			want: "ret void in function returning i32",
		},
		{
			name: "ret_wrong_type",
			build: func(m *ir.Module) {
				fn := m.NewFunc("f", types.I32)
				fn.NewBlock("entry").NewRet(constant.NewInt(types.I64, 3))
			},
			want: "ret i64 in function returning i32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ir.NewModule()
			tt.build(m)
			err := Module(m)
			be.Err(t, err)
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCheckKinds(t *testing.T) {
	m := ir.NewModule()
	fn := m.NewFunc("f", types.I32)
	entry := fn.NewBlock("entry")
	fn.NewBlock("dangling")
	entry.NewRet(nil)

	errs := Check(m)
	be.Equal(t, len(errs), 2)
	be.Equal(t, errs[0].Kind, Unterminated)
	be.Equal(t, errs[0].Block, "dangling")
	be.Equal(t, errs[1].Kind, ReturnType)
	be.Equal(t, errs[1].Func, "f")
}

package ast

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestDesugarCompoundAssign(t *testing.T) {
	u, err := ReadUnit([]byte(`(unit "a" (func "f" (body (set-op "*" "p.x" (int 3) @4:2))))`))
	be.Err(t, err, nil)

	Desugar(u)
	st := u.Decls[0].Func.Body[0]
	be.Equal(t, st.Kind, StmtAssign)
	as := st.Data.(AssignData)
	be.Equal(t, as.Target, []string{"p", "x"})

	bin := as.Value.Data.(BinaryData)
	be.Equal(t, bin.Op, BinMul)
	be.Equal(t, bin.Left.Data.(PathData).Dotted(), "p.x")
	be.Equal(t, bin.Right.Data.(LiteralData).Int, int64(3))
}

func TestDesugarElifChain(t *testing.T) {
	u, err := ReadUnit([]byte(`
(unit "a" (func "f" (body
  (if (id "a") (then (return (int 1)))
      (elif (id "b") (return (int 2)))
      (elif (id "c") (return (int 3)))
      (else (return (int 4)))))))`))
	be.Err(t, err, nil)

	Desugar(u)
	Desugar(u) // повторный вызов ничего не меняет

	top := u.Decls[0].Func.Body[0].Data.(IfData)
	be.Equal(t, len(top.Elifs), 0)
	be.True(t, top.HasElse)

	second := top.Else[0].Data.(IfData)
	be.Equal(t, second.Cond.Data.(PathData).Dotted(), "b")
	third := second.Else[0].Data.(IfData)
	be.Equal(t, third.Cond.Data.(PathData).Dotted(), "c")
	be.True(t, third.HasElse)
	be.Equal(t, third.Else[0].Kind, StmtReturn)
}

func TestDesugarElifWithoutElse(t *testing.T) {
	u, err := ReadUnit([]byte(`
(unit "a" (func "f" (body
  (if (id "a") (then) (elif (id "b") (break))))))`))
	be.Err(t, err, nil)

	Desugar(u)
	top := u.Decls[0].Func.Body[0].Data.(IfData)
	nested := top.Else[0].Data.(IfData)
	be.True(t, !nested.HasElse)
	be.Equal(t, len(nested.Else), 0)
}

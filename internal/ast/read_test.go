package ast

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"rial/internal/sexpr"
	"rial/internal/source"
)

const pointUnit = `
(unit "geo:point" :source "src/geo/point.rial"
  (using "std:math" :as "m")
  (struct "Point" :access public @1:1
    (field "x" "Int32" @2:3)
    (field "y" "Int32")
    (ctor :params (("x" "Int32") ("y" "Int32"))
      (body (set "this.x" (id "x")) (set "this.y" (id "y"))))
    (method "add" :access public :ret "Point" :params (("other" "Point")) @5:3
      (body (return (new "Point" (+ (id "x") (id "other.x")) (+ (id "y") (id "other.y")))))))
  (func "puts" :external :variadic :ret "Int32" :params (("s" "CString")))
  (func "twice" :receiver "Int32" :ret "Int32" (body (return (* (id "this") (int 2)))))
  (global "LIMIT" :access internal (int 10 :type "Int64")))
`

func TestReadUnit(t *testing.T) {
	u, err := ReadUnit([]byte(pointUnit))
	be.Err(t, err, nil)

	be.Equal(t, u.Module, "geo:point")
	be.Equal(t, u.Source, "src/geo/point.rial")
	be.Equal(t, u.Usings, []Using{{Namespace: "std:math", Alias: "m"}})
	be.Equal(t, len(u.Decls), 4)

	st := u.Decls[0].Struct
	be.Equal(t, st.Name, "Point")
	be.Equal(t, st.Access, AccessPublic)
	be.Equal(t, st.Pos, source.Pos{Line: 1, Col: 1})
	be.Equal(t, st.Fields[0].Pos, source.Pos{Line: 2, Col: 3})
	be.Equal(t, len(st.Methods), 2)

	ctor := st.Methods[0]
	be.Equal(t, ctor.Kind, FuncConstructor)
	be.Equal(t, ctor.Name, "Point")
	be.Equal(t, ctor.ArgTypes(), []string{"Int32", "Int32"})

	add := st.Methods[1]
	be.Equal(t, add.Kind, FuncMethod)
	be.Equal(t, add.ReturnType(), "Point")
	ret := add.Body[0].Data.(ReturnData)
	be.Equal(t, ret.Value.Kind, ExprConstruct)

	puts := u.Decls[1].Func
	be.Equal(t, puts.Kind, FuncExternal)
	be.True(t, puts.Variadic)

	twice := u.Decls[2].Func
	be.Equal(t, twice.Kind, FuncExtension)
	be.Equal(t, twice.Receiver, "Int32")

	g := u.Decls[3].Global
	be.Equal(t, g.Access, AccessInternal)
	lit := g.Value.Data.(LiteralData)
	be.Equal(t, lit.Int, int64(10))
	be.Equal(t, lit.Type, "Int64")
}

func TestReadStatements(t *testing.T) {
	u, err := ReadUnit([]byte(`
(unit "app:main"
  (func "main" :ret "Int32"
    (body
      (for (var "i" (int 0)) (< (id "i") (int 10)) (inc "i")
        (if (== (id "i") (int 5)) (then (break))))
      (switch (id "x")
        (case ((int 1) (int 2)) (return (int 1)))
        (case ((int 3)))
        (default @9:7 (return (int 0))))
      (loop (continue))
      (call "print" (str "done")))))`))
	be.Err(t, err, nil)

	body := u.Decls[0].Func.Body
	be.Equal(t, len(body), 4)

	loop := body[0].Data.(ForData)
	be.Equal(t, loop.Init.Kind, StmtVar)
	be.Equal(t, loop.Cond.Data.(BinaryData).Op, BinLt)
	be.Equal(t, loop.Step.Kind, StmtIncDec)
	be.Equal(t, loop.Body[0].Kind, StmtIf)

	sw := body[1].Data.(SwitchData)
	be.Equal(t, len(sw.Cases), 3)
	be.Equal(t, len(sw.Cases[0].Values), 2)
	be.Equal(t, len(sw.Cases[1].Body), 0)
	be.True(t, sw.Cases[2].Default)
	be.Equal(t, sw.Cases[2].Pos, source.Pos{Line: 9, Col: 7})

	be.Equal(t, body[2].Kind, StmtLoop)
	be.Equal(t, body[3].Kind, StmtExpr)
	be.Equal(t, body[3].Data.(ExprStmtData).Expr.Data.(CallData).Name, "print")
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not a unit", `(func "f")`},
		{"two forms", `(unit "a") (unit "b")`},
		{"bad decl", `(unit "a" (banana))`},
		{"bad expr", `(unit "a" (global "g" (frob 1)))`},
		{"bad position", `(unit "a" @x:1)`},
		{"option without value", `(unit "a" (func "f" :ret))`},
		{"for clauses", `(unit "a" (func "f" (body (for _ _))))`},
		{"bad char", `(unit "a" (global "c" (char "ab")))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUnit([]byte(tt.src))
			var re *ReadError
			be.True(t, errors.As(err, &re))
		})
	}

	_, err := ReadUnit([]byte(`(unit "a"`))
	var se *sexpr.SyntaxError
	be.True(t, errors.As(err, &se))
}

package ast

import (
	"fmt"
	"strconv"
	"strings"

	"rial/internal/sexpr"
	"rial/internal/source"
)

// ReadError is a structural error in a text unit, located by byte offset.
type ReadError struct {
	Off uint32
	Msg string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("ast: offset %d: %s", e.Off, e.Msg)
}

// ReadUnit parses the text form of a unit:
//
//	(unit "app:main" @1:1
//	  (using "std:io")
//	  (struct "Point" :access public (field "x" "Int32") (field "y" "Int32"))
//	  (func "main" :ret "Int32" (body (return (int 0)))))
//
// Atoms of the form @LINE:COL set the source position of the enclosing
// node; :key value pairs and bare :flags are options; everything else is
// positional.
func ReadUnit(src []byte) (*Unit, error) {
	nodes, err := sexpr.Parse(src)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 || nodes[0].Head() != "unit" {
		var off uint32
		if len(nodes) > 0 {
			off = nodes[0].Off
		}
		return nil, &ReadError{Off: off, Msg: "expected a single (unit ...) form"}
	}
	r := &reader{}
	u := r.unit(nodes[0])
	if r.err != nil {
		return nil, r.err
	}
	return u, nil
}

type reader struct {
	err error
}

func (r *reader) fail(n *sexpr.Node, format string, args ...any) {
	if r.err != nil {
		return
	}
	var off uint32
	if n != nil {
		off = n.Off
	}
	r.err = &ReadError{Off: off, Msg: fmt.Sprintf(format, args...)}
}

// form is a list split into its parts.
type form struct {
	node  *sexpr.Node
	pos   source.Pos
	args  []*sexpr.Node
	opts  map[string]*sexpr.Node
	flags map[string]bool
}

var knownFlags = map[string]bool{
	":external": true,
	":variadic": true,
}

func (r *reader) split(n *sexpr.Node) form {
	f := form{node: n, opts: map[string]*sexpr.Node{}, flags: map[string]bool{}}
	items := n.Args()
	for i := 0; i < len(items); i++ {
		it := items[i]
		if it.Kind == sexpr.NodeAtom && strings.HasPrefix(it.Text, "@") {
			f.pos = r.pos(it)
			continue
		}
		if it.Kind == sexpr.NodeAtom && strings.HasPrefix(it.Text, ":") {
			if knownFlags[it.Text] {
				f.flags[it.Text] = true
				continue
			}
			if i+1 >= len(items) {
				r.fail(it, "option %s without value", it.Text)
				return f
			}
			f.opts[it.Text] = items[i+1]
			i++
			continue
		}
		f.args = append(f.args, it)
	}
	return f
}

func (r *reader) pos(n *sexpr.Node) source.Pos {
	line, col, ok := strings.Cut(strings.TrimPrefix(n.Text, "@"), ":")
	if !ok {
		r.fail(n, "bad position %q, expected @LINE:COL", n.Text)
		return source.NoPos
	}
	l, err1 := strconv.ParseUint(line, 10, 32)
	c, err2 := strconv.ParseUint(col, 10, 32)
	if err1 != nil || err2 != nil {
		r.fail(n, "bad position %q", n.Text)
		return source.NoPos
	}
	return source.Pos{Line: uint32(l), Col: uint32(c)}
}

func (r *reader) str(n *sexpr.Node, what string) string {
	if n == nil {
		r.fail(nil, "missing %s", what)
		return ""
	}
	if n.Kind != sexpr.NodeString {
		r.fail(n, "%s must be a string, got %s", what, n.Kind)
		return ""
	}
	return n.Text
}

func (r *reader) optStr(f form, key string) string {
	n, ok := f.opts[key]
	if !ok {
		return ""
	}
	return r.str(n, key)
}

func (r *reader) access(f form) Access {
	n, ok := f.opts[":access"]
	if !ok {
		return AccessPrivate
	}
	a, valid := ParseAccess(n.Text)
	if !valid {
		r.fail(n, "unknown access modifier %q", n.Text)
	}
	return a
}

func (r *reader) arg(f form, i int, what string) *sexpr.Node {
	if i >= len(f.args) {
		r.fail(f.node, "%s: missing %s", f.node.Head(), what)
		return nil
	}
	return f.args[i]
}

func (r *reader) unit(n *sexpr.Node) *Unit {
	f := r.split(n)
	u := &Unit{Module: r.str(r.arg(f, 0, "module name"), "module name"), Pos: f.pos}
	u.Source = r.optStr(f, ":source")
	for _, it := range f.args[min(1, len(f.args)):] {
		if r.err != nil {
			return nil
		}
		switch it.Head() {
		case "using":
			uf := r.split(it)
			u.Usings = append(u.Usings, Using{
				Namespace: r.str(r.arg(uf, 0, "namespace"), "namespace"),
				Alias:     r.optStr(uf, ":as"),
				Pos:       uf.pos,
			})
		case "func":
			u.Decls = append(u.Decls, &Decl{Kind: DeclFunc, Func: r.funcDecl(it, FuncFree)})
		case "struct":
			u.Decls = append(u.Decls, &Decl{Kind: DeclStruct, Struct: r.structDecl(it)})
		case "global":
			u.Decls = append(u.Decls, &Decl{Kind: DeclGlobal, Global: r.globalDecl(it)})
		default:
			r.fail(it, "unknown declaration %s", it)
		}
	}
	return u
}

func (r *reader) params(n *sexpr.Node) []Param {
	if n == nil {
		return nil
	}
	if n.Kind != sexpr.NodeList {
		r.fail(n, ":params must be a list")
		return nil
	}
	out := make([]Param, 0, len(n.List))
	for _, p := range n.List {
		pf := r.splitPlain(p)
		if len(pf.args) != 2 {
			r.fail(p, "parameter must be (\"name\" \"Type\")")
			return nil
		}
		out = append(out, Param{
			Name: r.str(pf.args[0], "parameter name"),
			Type: r.str(pf.args[1], "parameter type"),
			Pos:  pf.pos,
		})
	}
	return out
}

// splitPlain splits a headless list such as a parameter pair.
func (r *reader) splitPlain(n *sexpr.Node) form {
	f := form{node: n}
	if n.Kind != sexpr.NodeList {
		r.fail(n, "expected a list")
		return f
	}
	for _, it := range n.List {
		if it.Kind == sexpr.NodeAtom && strings.HasPrefix(it.Text, "@") {
			f.pos = r.pos(it)
			continue
		}
		f.args = append(f.args, it)
	}
	return f
}

func (r *reader) funcDecl(n *sexpr.Node, kind FuncKind) *FuncDecl {
	f := r.split(n)
	fn := &FuncDecl{
		Kind:     kind,
		Access:   r.access(f),
		Params:   r.params(f.opts[":params"]),
		Return:   r.optStr(f, ":ret"),
		Receiver: r.optStr(f, ":receiver"),
		Variadic: f.flags[":variadic"],
		Pos:      f.pos,
	}
	rest := f.args
	if kind != FuncConstructor {
		fn.Name = r.str(r.arg(f, 0, "function name"), "function name")
		rest = f.args[min(1, len(f.args)):]
	}
	switch {
	case f.flags[":external"]:
		fn.Kind = FuncExternal
	case fn.Receiver != "" && kind == FuncFree:
		fn.Kind = FuncExtension
	}
	for _, it := range rest {
		if it.Head() != "body" {
			r.fail(it, "unexpected %s in function %q", it, fn.Name)
			return fn
		}
		fn.Body = r.stmts(it.Args())
	}
	return fn
}

func (r *reader) structDecl(n *sexpr.Node) *StructDecl {
	f := r.split(n)
	st := &StructDecl{
		Name:   r.str(r.arg(f, 0, "struct name"), "struct name"),
		Access: r.access(f),
		Pos:    f.pos,
	}
	if b, ok := f.opts[":bases"]; ok {
		for _, it := range b.List {
			st.Bases = append(st.Bases, r.str(it, "base name"))
		}
	}
	for _, it := range f.args[min(1, len(f.args)):] {
		switch it.Head() {
		case "field":
			ff := r.split(it)
			st.Fields = append(st.Fields, Field{
				Name: r.str(r.arg(ff, 0, "field name"), "field name"),
				Type: r.str(r.arg(ff, 1, "field type"), "field type"),
				Pos:  ff.pos,
			})
		case "method":
			st.Methods = append(st.Methods, r.funcDecl(it, FuncMethod))
		case "ctor":
			ctor := r.funcDecl(it, FuncConstructor)
			ctor.Name = st.Name
			st.Methods = append(st.Methods, ctor)
		default:
			r.fail(it, "unexpected %s in struct %q", it, st.Name)
		}
	}
	return st
}

func (r *reader) globalDecl(n *sexpr.Node) *GlobalDecl {
	f := r.split(n)
	return &GlobalDecl{
		Name:   r.str(r.arg(f, 0, "global name"), "global name"),
		Access: r.access(f),
		Type:   r.optStr(f, ":type"),
		Value:  r.expr(r.arg(f, 1, "initializer")),
		Pos:    f.pos,
	}
}

func (r *reader) stmts(nodes []*sexpr.Node) []*Stmt {
	out := make([]*Stmt, 0, len(nodes))
	for _, n := range nodes {
		if r.err != nil {
			return out
		}
		out = append(out, r.stmt(n))
	}
	return out
}

func dotted(s string) []string {
	return strings.Split(s, ".")
}

func (r *reader) stmt(n *sexpr.Node) *Stmt {
	if n == nil {
		return nil
	}
	f := r.split(n)
	st := &Stmt{Pos: f.pos}
	switch n.Head() {
	case "var":
		st.Kind = StmtVar
		st.Data = VarData{
			Name:  r.str(r.arg(f, 0, "variable name"), "variable name"),
			Type:  r.optStr(f, ":type"),
			Value: r.expr(r.arg(f, 1, "initializer")),
		}
	case "set":
		st.Kind = StmtAssign
		st.Data = AssignData{
			Target: dotted(r.str(r.arg(f, 0, "target"), "target")),
			Value:  r.expr(r.arg(f, 1, "value")),
		}
	case "set-op":
		opNode := r.arg(f, 0, "operator")
		op, ok := BinaryOp(0), false
		if opNode != nil {
			op, ok = ParseBinaryOp(opNode.Text)
		}
		if !ok || op.IsComparison() || op.IsLogical() {
			r.fail(n, "set-op needs an arithmetic operator")
			return st
		}
		st.Kind = StmtCompoundAssign
		st.Data = CompoundAssignData{
			Op:     op,
			Target: dotted(r.str(r.arg(f, 1, "target"), "target")),
			Value:  r.expr(r.arg(f, 2, "value")),
		}
	case "inc", "dec":
		st.Kind = StmtIncDec
		d := IncDecData{
			Target:    dotted(r.str(r.arg(f, 0, "target"), "target")),
			Decrement: n.Head() == "dec",
		}
		if len(f.args) > 1 {
			d.Step = r.expr(f.args[1])
		}
		st.Data = d
	case "return":
		st.Kind = StmtReturn
		d := ReturnData{}
		if len(f.args) > 0 {
			d.Value = r.expr(f.args[0])
		}
		st.Data = d
	case "break":
		st.Kind, st.Data = StmtBreak, BreakData{}
	case "continue":
		st.Kind, st.Data = StmtContinue, ContinueData{}
	case "if":
		st.Kind = StmtIf
		d := IfData{Cond: r.expr(r.arg(f, 0, "condition"))}
		for _, arm := range f.args[min(1, len(f.args)):] {
			af := r.split(arm)
			switch arm.Head() {
			case "then":
				d.Then = r.stmts(af.args)
			case "elif":
				d.Elifs = append(d.Elifs, ElifClause{
					Cond: r.expr(r.arg(af, 0, "condition")),
					Body: r.stmts(af.args[min(1, len(af.args)):]),
					Pos:  af.pos,
				})
			case "else":
				d.Else, d.HasElse = r.stmts(af.args), true
			default:
				r.fail(arm, "unexpected %s in if", arm)
			}
		}
		st.Data = d
	case "while":
		st.Kind = StmtWhile
		st.Data = WhileData{
			Cond: r.expr(r.arg(f, 0, "condition")),
			Body: r.stmts(f.args[min(1, len(f.args)):]),
		}
	case "loop":
		st.Kind = StmtLoop
		st.Data = LoopData{Body: r.stmts(f.args)}
	case "for":
		st.Kind = StmtFor
		if len(f.args) < 3 {
			r.fail(n, "for needs init, condition and step clauses (use _ to omit)")
			return st
		}
		d := ForData{Body: r.stmts(f.args[3:])}
		if !f.args[0].IsAtom("_") {
			d.Init = r.stmt(f.args[0])
		}
		if !f.args[1].IsAtom("_") {
			d.Cond = r.expr(f.args[1])
		}
		if !f.args[2].IsAtom("_") {
			d.Step = r.stmt(f.args[2])
		}
		st.Data = d
	case "switch":
		st.Kind = StmtSwitch
		d := SwitchData{Value: r.expr(r.arg(f, 0, "scrutinee"))}
		for _, c := range f.args[min(1, len(f.args)):] {
			cf := r.split(c)
			sc := SwitchCase{Pos: cf.pos}
			switch c.Head() {
			case "case":
				labels := r.arg(cf, 0, "case values")
				if labels == nil || labels.Kind != sexpr.NodeList {
					r.fail(c, "case values must be a list")
					return st
				}
				for _, v := range labels.List {
					sc.Values = append(sc.Values, r.expr(v))
				}
				sc.Body = r.stmts(cf.args[1:])
			case "default":
				sc.Default = true
				sc.Body = r.stmts(cf.args)
			default:
				r.fail(c, "unexpected %s in switch", c)
				return st
			}
			d.Cases = append(d.Cases, sc)
		}
		st.Data = d
	default:
		e := r.expr(n)
		st.Kind = StmtExpr
		st.Data = ExprStmtData{Expr: e}
		if e != nil {
			st.Pos = e.Pos
		}
	}
	return st
}

func (r *reader) exprs(nodes []*sexpr.Node) []*Expr {
	out := make([]*Expr, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, r.expr(n))
	}
	return out
}

func (r *reader) expr(n *sexpr.Node) *Expr {
	if n == nil || r.err != nil {
		return nil
	}
	if n.Kind != sexpr.NodeList {
		r.fail(n, "expected an expression, got %s %s", n.Kind, n)
		return nil
	}
	f := r.split(n)
	e := &Expr{Pos: f.pos}
	head := n.Head()
	switch head {
	case "int":
		v, err := strconv.ParseInt(atomText(r.arg(f, 0, "value")), 0, 64)
		if err != nil {
			r.fail(n, "bad integer literal: %v", err)
			return nil
		}
		e.Kind, e.Data = ExprLiteral, LiteralData{Kind: LiteralInt, Int: v, Type: r.optStr(f, ":type")}
	case "float":
		v, err := strconv.ParseFloat(atomText(r.arg(f, 0, "value")), 64)
		if err != nil {
			r.fail(n, "bad float literal: %v", err)
			return nil
		}
		e.Kind, e.Data = ExprLiteral, LiteralData{Kind: LiteralFloat, Float: v, Type: r.optStr(f, ":type")}
	case "bool":
		v, err := strconv.ParseBool(atomText(r.arg(f, 0, "value")))
		if err != nil {
			r.fail(n, "bad bool literal: %v", err)
			return nil
		}
		e.Kind, e.Data = ExprLiteral, LiteralData{Kind: LiteralBool, Bool: v}
	case "char":
		s := r.str(r.arg(f, 0, "value"), "char literal")
		if len([]rune(s)) != 1 {
			r.fail(n, "char literal must hold exactly one character")
			return nil
		}
		e.Kind, e.Data = ExprLiteral, LiteralData{Kind: LiteralChar, String: s}
	case "str":
		e.Kind, e.Data = ExprLiteral, LiteralData{Kind: LiteralString, String: r.str(r.arg(f, 0, "value"), "string literal")}
	case "id":
		e.Kind, e.Data = ExprPath, PathData{Segments: dotted(r.str(r.arg(f, 0, "name"), "name"))}
	case "neg", "not":
		op := UnaryNeg
		if head == "not" {
			op = UnaryNot
		}
		e.Kind, e.Data = ExprUnary, UnaryData{Op: op, Operand: r.expr(r.arg(f, 0, "operand"))}
	case "cast":
		e.Kind, e.Data = ExprCast, CastData{
			Type:  r.str(r.arg(f, 0, "type"), "cast type"),
			Value: r.expr(r.arg(f, 1, "value")),
		}
	case "ternary":
		e.Kind, e.Data = ExprTernary, TernaryData{
			Cond: r.expr(r.arg(f, 0, "condition")),
			Then: r.expr(r.arg(f, 1, "then value")),
			Else: r.expr(r.arg(f, 2, "else value")),
		}
	case "call":
		e.Kind, e.Data = ExprCall, CallData{
			Name: r.str(r.arg(f, 0, "callee"), "callee"),
			Args: r.exprs(f.args[min(1, len(f.args)):]),
		}
	case "mcall":
		e.Kind, e.Data = ExprMethodCall, MethodCallData{
			Receiver: dotted(r.str(r.arg(f, 0, "receiver"), "receiver")),
			Name:     r.str(r.arg(f, 1, "method"), "method"),
			Args:     r.exprs(f.args[min(2, len(f.args)):]),
		}
	case "new":
		e.Kind, e.Data = ExprConstruct, ConstructData{
			Struct: r.str(r.arg(f, 0, "struct"), "struct"),
			Args:   r.exprs(f.args[min(1, len(f.args)):]),
		}
	default:
		op, ok := ParseBinaryOp(head)
		if !ok {
			r.fail(n, "unknown expression %q", head)
			return nil
		}
		if len(f.args) != 2 {
			r.fail(n, "operator %s takes two operands", head)
			return nil
		}
		e.Kind, e.Data = ExprBinary, BinaryData{Op: op, Left: r.expr(f.args[0]), Right: r.expr(f.args[1])}
	}
	return e
}

func atomText(n *sexpr.Node) string {
	if n == nil {
		return ""
	}
	return n.Text
}

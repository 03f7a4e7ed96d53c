package ast

// Desugar rewrites the convenience forms the parser may emit into the
// primitive forms lowering expects:
//
//   - `x op= y` becomes `x = x op y`;
//   - if/elif/else chains become nested if/else.
//
// The unit is modified in place. Desugar is idempotent.
func Desugar(u *Unit) {
	for _, d := range u.Decls {
		switch d.Kind {
		case DeclFunc:
			if d.Func != nil {
				d.Func.Body = desugarBlock(d.Func.Body)
			}
		case DeclStruct:
			if d.Struct == nil {
				continue
			}
			for _, m := range d.Struct.Methods {
				m.Body = desugarBlock(m.Body)
			}
		}
	}
}

func desugarBlock(stmts []*Stmt) []*Stmt {
	for i, st := range stmts {
		stmts[i] = desugarStmt(st)
	}
	return stmts
}

func desugarStmt(st *Stmt) *Stmt {
	if st == nil {
		return nil
	}
	switch data := st.Data.(type) {
	case CompoundAssignData:
		target := &Expr{Kind: ExprPath, Pos: st.Pos, Data: PathData{Segments: data.Target}}
		return &Stmt{
			Kind: StmtAssign,
			Pos:  st.Pos,
			Data: AssignData{
				Target: data.Target,
				Value:  NewBinary(st.Pos, data.Op, target, data.Value),
			},
		}
	case IfData:
		data.Then = desugarBlock(data.Then)
		data.Else = desugarBlock(data.Else)
		if len(data.Elifs) > 0 {
			// разворачиваем с конца: каждый elif становится if внутри else предыдущего
			tail, hasTail := data.Else, data.HasElse
			for i := len(data.Elifs) - 1; i >= 0; i-- {
				el := data.Elifs[i]
				nested := &Stmt{
					Kind: StmtIf,
					Pos:  el.Pos,
					Data: IfData{Cond: el.Cond, Then: desugarBlock(el.Body), Else: tail, HasElse: hasTail},
				}
				tail, hasTail = []*Stmt{nested}, true
			}
			data.Elifs = nil
			data.Else, data.HasElse = tail, hasTail
		}
		st.Data = data
	case WhileData:
		data.Body = desugarBlock(data.Body)
		st.Data = data
	case LoopData:
		data.Body = desugarBlock(data.Body)
		st.Data = data
	case ForData:
		data.Init = desugarStmt(data.Init)
		data.Step = desugarStmt(data.Step)
		data.Body = desugarBlock(data.Body)
		st.Data = data
	case SwitchData:
		for i := range data.Cases {
			data.Cases[i].Body = desugarBlock(data.Cases[i].Body)
		}
		st.Data = data
	}
	return st
}

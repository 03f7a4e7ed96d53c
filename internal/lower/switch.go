package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"rial/internal/ast"
	"rial/internal/blocks"
	"rial/internal/diag"
	"rial/internal/symbols"
)

// switchArm is a group of labels sharing one block: a non-empty case and
// every empty case right before it.
type switchArm struct {
	block *ir.Block
	body  []*ast.Stmt
}

// lowerSwitch evaluates the scrutinee once and dispatches with a single
// switch terminator. Arms never fall through; empty cases share the block
// of the next non-empty one.
func (fl *funcLowerer) lowerSwitch(data ast.SwitchData) {
	bb := fl.bb
	x, ok := fl.lowerExpr(data.Value)
	if ok && !x.typ.IsInteger() && !x.typ.IsBool() {
		fl.errorf(diag.LowInvalidOperand, data.Value.Pos, "cannot switch on %s", x.typ)
		ok = false
	}
	if !ok {
		fl.switchBodies(data)
		return
	}
	scrutinee := fl.rvalue(x)
	end := bb.NewBlock("switch.end")

	var (
		arms       []switchArm
		cases      []*ir.Case
		def        *ir.Block
		seen       = make(map[int64]bool)
		pending    []ast.SwitchCase
		folder     = folder{reporter: fl.reporter, structs: fl.table}
		hasDefault bool
	)
	bind := func(c ast.SwitchCase, target *ir.Block) {
		if c.Default {
			if hasDefault {
				fl.errorf(diag.LowDuplicateDefaultCase, c.Pos, "duplicate default case")
			} else {
				hasDefault, def = true, target
			}
		}
		for _, label := range c.Values {
			cv, ok := folder.fold(label)
			if !ok || !(cv.typ.IsInteger() || cv.typ.IsBool()) {
				fl.errorf(diag.LowNonConstantCase, label.Pos, "case label is not an integer constant")
				continue
			}
			if cv.typ != x.typ {
				if cv, ok = convertConst(cv, x.typ); !ok {
					fl.errorf(diag.LowInvalidCast, label.Pos, "case label does not convert to %s", x.typ)
					continue
				}
			}
			if seen[cv.i] {
				fl.errorf(diag.LowDuplicateCaseValue, label.Pos, "duplicate case value %d", cv.i)
				continue
			}
			seen[cv.i] = true
			k, _ := scalarConstant(cv)
			cases = append(cases, ir.NewCase(k.(*constant.Int), target))
		}
	}

	for _, c := range data.Cases {
		if len(c.Body) == 0 {
			pending = append(pending, c)
			continue
		}
		name := "switch.case"
		if c.Default {
			name = "switch.default"
		}
		blk := bb.NewScopedBlock(name, symbols.ScopeBlock)
		shared := len(pending) > 0
		for _, p := range pending {
			bind(p, blk)
		}
		pending = pending[:0]
		duplicate := c.Default && hasDefault
		bind(c, blk)
		if duplicate && !shared && len(c.Values) == 0 {
			// тело второго default недостижимо
			bb.Discard(blk)
			continue
		}
		arms = append(arms, switchArm{block: blk, body: c.Body})
	}
	for _, p := range pending {
		fl.warnf(diag.LowTrailingEmptyCase, p.Pos, "empty case at the end of switch jumps to its end")
		bind(p, end)
	}
	if def == nil {
		def = end
	}
	_ = bb.Switch(scrutinee, def, cases...)

	for _, arm := range arms {
		bb.Enter(arm.block)
		bb.PushContext(blocks.Context{Break: end})
		fl.lowerStmts(arm.body)
		bb.PopContext()
		bb.JumpIfNotExists(end)
	}
	bb.Enter(end)
}

// switchBodies lowers the arms of a switch whose scrutinee failed. Labels
// are not checked; the arms get no predecessors and only report their own
// errors.
func (fl *funcLowerer) switchBodies(data ast.SwitchData) {
	bb := fl.bb
	end := bb.NewBlock("switch.end")
	_ = bb.Jump(end)
	for _, c := range data.Cases {
		if len(c.Body) == 0 {
			continue
		}
		blk := bb.NewScopedBlock("switch.case", symbols.ScopeBlock)
		bb.Enter(blk)
		bb.PushContext(blocks.Context{Break: end})
		fl.lowerStmts(c.Body)
		bb.PopContext()
		bb.JumpIfNotExists(end)
	}
	bb.Enter(end)
}

// Package verify checks structural invariants of lowered LLVM modules
// before they are written out.
package verify

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Kind classifies a violation.
type Kind uint8

const (
	Unterminated Kind = iota + 1
	ForeignTarget
	DuplicateBlock
	PhiIncoming
	PhiPlacement
	LateAlloca
	ReturnType
)

// Error is a single violation inside a function.
type Error struct {
	Func  string
	Block string
	Kind  Kind
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("function %s: %s: %s", e.Func, e.Block, e.Msg)
}

// Check returns every violation in the function definitions of m.
func Check(m *ir.Module) []*Error {
	if m == nil {
		return nil
	}
	var out []*Error
	for _, fn := range m.Funcs {
		out = append(out, Func(fn)...)
	}
	return out
}

// Module is Check folded into a single error.
// Returns error if any invariant is violated.
func Module(m *ir.Module) error {
	var errs []error
	for _, e := range Check(m) {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Func checks a single function. Declarations always pass.
func Func(fn *ir.Func) []*Error {
	if fn == nil || len(fn.Blocks) == 0 {
		return nil
	}
	c := &checker{fn: fn}
	// 1. каждый блок завершён
	c.blocksTerminated()
	// 2. переходы только внутрь функции
	c.blockTargets()
	// 3. phi в начале блока и по реальным предшественникам
	c.phis()
	// 4. alloca только во входном блоке
	c.allocas()
	// 5. ret совпадает с сигнатурой
	c.returns()
	return c.errs
}

type checker struct {
	fn   *ir.Func
	errs []*Error
}

func (c *checker) report(blk *ir.Block, kind Kind, format string, args ...any) {
	c.errs = append(c.errs, &Error{
		Func:  c.fn.Name(),
		Block: label(blk),
		Kind:  kind,
		Msg:   fmt.Sprintf(format, args...),
	})
}

func (c *checker) blocksTerminated() {
	for _, blk := range c.fn.Blocks {
		if blk.Term == nil {
			c.report(blk, Unterminated, "unterminated block")
		}
	}
}

func (c *checker) blockTargets() {
	owned := make(map[*ir.Block]bool, len(c.fn.Blocks))
	names := make(map[string]bool, len(c.fn.Blocks))
	for _, blk := range c.fn.Blocks {
		owned[blk] = true
		if name := blk.Name(); name != "" {
			if names[name] {
				c.report(blk, DuplicateBlock, "duplicate block name")
			}
			names[name] = true
		}
	}
	for _, blk := range c.fn.Blocks {
		if blk.Term == nil {
			continue
		}
		for _, succ := range blk.Term.Succs() {
			if !owned[succ] {
				c.report(blk, ForeignTarget, "branch to foreign block %s", label(succ))
			}
		}
	}
}

func predecessors(fn *ir.Func) map[*ir.Block]map[value.Value]bool {
	preds := make(map[*ir.Block]map[value.Value]bool, len(fn.Blocks))
	for _, blk := range fn.Blocks {
		if blk.Term == nil {
			continue
		}
		for _, succ := range blk.Term.Succs() {
			if preds[succ] == nil {
				preds[succ] = make(map[value.Value]bool)
			}
			preds[succ][blk] = true
		}
	}
	return preds
}

func (c *checker) phis() {
	preds := predecessors(c.fn)
	for _, blk := range c.fn.Blocks {
		leading := true
		for i, inst := range blk.Insts {
			phi, ok := inst.(*ir.InstPhi)
			if !ok {
				leading = false
				continue
			}
			if !leading {
				c.report(blk, PhiPlacement, "instr %d: phi after non-phi instruction", i)
			}
			for _, inc := range phi.Incs {
				if !preds[blk][inc.Pred] {
					c.report(blk, PhiIncoming, "instr %d: phi incoming from %s which is not a predecessor", i, inc.Pred.Ident())
				}
			}
		}
	}
}

func (c *checker) allocas() {
	for _, blk := range c.fn.Blocks[1:] {
		for i, inst := range blk.Insts {
			if _, ok := inst.(*ir.InstAlloca); ok {
				c.report(blk, LateAlloca, "instr %d: alloca outside entry block", i)
			}
		}
	}
}

func (c *checker) returns() {
	want := c.fn.Sig.RetType
	for _, blk := range c.fn.Blocks {
		ret, ok := blk.Term.(*ir.TermRet)
		if !ok {
			continue
		}
		switch {
		case ret.X == nil && !types.Equal(want, types.Void):
			c.report(blk, ReturnType, "ret void in function returning %s", want)
		case ret.X != nil && !types.Equal(ret.X.Type(), want):
			c.report(blk, ReturnType, "ret %s in function returning %s", ret.X.Type(), want)
		}
	}
}

func label(blk *ir.Block) string {
	if name := blk.Name(); name != "" {
		return name
	}
	return blk.Ident()
}

// Package blocks builds the control-flow graph of one function: it owns
// the cursor, names blocks, tracks which lexical scope owns every block and
// keeps the break/continue targets of enclosing loops and switches.
package blocks

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"rial/internal/symbols"
)

// ErrTerminated is returned when a terminator is added to a block that
// already has one.
var ErrTerminated = errors.New("block already terminated")

// Context is a break/continue target pair. Switches push a context with a
// nil Continue.
type Context struct {
	Continue *ir.Block
	Break    *ir.Block
}

// Builder constructs the blocks of a single function.
type Builder struct {
	fn      *ir.Func
	entry   *ir.Block
	cur     *ir.Block
	scopes  *symbols.Scopes
	owner   map[*ir.Block]symbols.ScopeID
	names   map[string]int
	entered map[*ir.Block]bool
	allocas int
	ctx     []Context
}

// New creates the entry block of fn inside a fresh function scope and
// places the cursor there.
func New(fn *ir.Func) *Builder {
	b := &Builder{
		fn:      fn,
		scopes:  symbols.NewScopes(0),
		owner:   make(map[*ir.Block]symbols.ScopeID),
		names:   make(map[string]int),
		entered: make(map[*ir.Block]bool),
	}
	for _, p := range fn.Params {
		b.names[p.Name()]++
	}
	root := b.scopes.New(symbols.ScopeFunction, symbols.NoScopeID)
	b.entry = b.newBlockIn("entry", root)
	b.cur = b.entry
	return b
}

// Func returns the function being built.
func (b *Builder) Func() *ir.Func { return b.fn }

// Entry returns the entry block.
func (b *Builder) Entry() *ir.Block { return b.entry }

// Cur returns the block under the cursor.
func (b *Builder) Cur() *ir.Block { return b.cur }

// Scopes exposes the scope arena of the function.
func (b *Builder) Scopes() *symbols.Scopes { return b.scopes }

// Scope returns the scope owning the current block.
func (b *Builder) Scope() symbols.ScopeID { return b.owner[b.cur] }

// Owner returns the scope owning blk.
func (b *Builder) Owner(blk *ir.Block) symbols.ScopeID { return b.owner[blk] }

// Terminated reports whether the current block already has a terminator.
func (b *Builder) Terminated() bool { return b.cur.Term != nil }

// UniqueName returns name, or name with a numeric suffix if it is taken.
// Blocks and named locals share one namespace per function.
func (b *Builder) UniqueName(name string) string {
	n := b.names[name]
	b.names[name] = n + 1
	if n == 0 {
		return name
	}
	for {
		candidate := name + "." + strconv.Itoa(n)
		if b.names[candidate] == 0 {
			b.names[candidate] = 1
			return candidate
		}
		n++
	}
}

func (b *Builder) newBlockIn(name string, scope symbols.ScopeID) *ir.Block {
	blk := b.fn.NewBlock(b.UniqueName(name))
	b.owner[blk] = scope
	return blk
}

// NewBlock appends a block owned by the current scope.
func (b *Builder) NewBlock(name string) *ir.Block {
	return b.newBlockIn(name, b.Scope())
}

// NewScopedBlock appends a block owned by a new child of the current scope.
// Variables declared while the cursor is inside it disappear once the
// cursor moves to a block of the outer scope.
func (b *Builder) NewScopedBlock(name string, kind symbols.ScopeKind) *ir.Block {
	return b.newBlockIn(name, b.scopes.New(kind, b.Scope()))
}

// Enter moves the cursor to blk. A block entered for the first time is
// moved to the end of the function so the layout follows emission order.
func (b *Builder) Enter(blk *ir.Block) {
	if _, ok := b.owner[blk]; !ok {
		panic(fmt.Sprintf("blocks: enter foreign block %q", blk.Name()))
	}
	if blk != b.entry && !b.entered[blk] {
		b.entered[blk] = true
		b.fn.Blocks = slices.DeleteFunc(b.fn.Blocks, func(x *ir.Block) bool { return x == blk })
		b.fn.Blocks = append(b.fn.Blocks, blk)
	}
	b.cur = blk
}

// Discard removes an unused block from the function.
func (b *Builder) Discard(blk *ir.Block) {
	if blk == b.entry {
		panic("blocks: discard entry block")
	}
	b.fn.Blocks = slices.DeleteFunc(b.fn.Blocks, func(x *ir.Block) bool { return x == blk })
	delete(b.owner, blk)
	if b.cur == blk {
		b.cur = nil
	}
}

func (b *Builder) terminate(term ir.Terminator) error {
	if b.cur.Term != nil {
		return fmt.Errorf("%w: %s", ErrTerminated, b.cur.Name())
	}
	b.cur.Term = term
	return nil
}

// Jump ends the current block with an unconditional branch.
func (b *Builder) Jump(target *ir.Block) error {
	return b.terminate(ir.NewBr(target))
}

// JumpIfNotExists branches to target unless the block already ends with
// a terminator. It reports whether a branch was added.
func (b *Builder) JumpIfNotExists(target *ir.Block) bool {
	if b.cur == nil || b.cur.Term != nil {
		return false
	}
	b.cur.Term = ir.NewBr(target)
	return true
}

// CondJump ends the current block with a two-way branch.
func (b *Builder) CondJump(cond value.Value, then, els *ir.Block) error {
	return b.terminate(ir.NewCondBr(cond, then, els))
}

// Switch ends the current block with a multi-way branch.
func (b *Builder) Switch(x value.Value, def *ir.Block, cases ...*ir.Case) error {
	return b.terminate(ir.NewSwitch(x, def, cases...))
}

// Ret ends the current block with a return; v is nil for void.
func (b *Builder) Ret(v value.Value) error {
	return b.terminate(ir.NewRet(v))
}

// Unreachable marks the current block as never reached.
func (b *Builder) Unreachable() error {
	return b.terminate(ir.NewUnreachable())
}

// HasPredecessors reports whether any terminator branches to blk. The
// entry block is always reachable.
func (b *Builder) HasPredecessors(blk *ir.Block) bool {
	if blk == b.entry {
		return true
	}
	for _, other := range b.fn.Blocks {
		if other.Term == nil {
			continue
		}
		if slices.Contains(other.Term.Succs(), blk) {
			return true
		}
	}
	return false
}

// Alloca reserves a named stack slot in the entry block so that every
// slot dominates all its uses regardless of where it is declared.
func (b *Builder) Alloca(elem irtypes.Type, name string) *ir.InstAlloca {
	inst := ir.NewAlloca(elem)
	inst.SetName(b.UniqueName(name))
	b.entry.Insts = slices.Insert(b.entry.Insts, b.allocas, ir.Instruction(inst))
	b.allocas++
	return inst
}

// Declare binds v in the scope of the current block.
func (b *Builder) Declare(v *symbols.Variable) bool {
	return b.scopes.Declare(b.Scope(), v)
}

// Lookup finds the nearest variable visible from the current block.
func (b *Builder) Lookup(name string) (*symbols.Variable, bool) {
	return b.scopes.Lookup(b.Scope(), name)
}

// PushContext enters a loop or switch.
func (b *Builder) PushContext(c Context) {
	b.ctx = append(b.ctx, c)
}

// PopContext leaves the innermost loop or switch.
func (b *Builder) PopContext() {
	if len(b.ctx) == 0 {
		panic("blocks: pop of empty context stack")
	}
	b.ctx = b.ctx[:len(b.ctx)-1]
}

// ContinueTarget returns the continue target of the innermost loop,
// skipping switches.
func (b *Builder) ContinueTarget() (*ir.Block, bool) {
	for i := len(b.ctx) - 1; i >= 0; i-- {
		if b.ctx[i].Continue != nil {
			return b.ctx[i].Continue, true
		}
	}
	return nil, false
}

// BreakTarget returns the exit of the innermost loop or switch.
func (b *Builder) BreakTarget() (*ir.Block, bool) {
	if len(b.ctx) == 0 {
		return nil, false
	}
	return b.ctx[len(b.ctx)-1].Break, true
}

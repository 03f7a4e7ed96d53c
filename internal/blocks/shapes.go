package blocks

import (
	"github.com/llir/llvm/ir"

	"rial/internal/symbols"
)

// Loop is the skeleton of a loop. Cond and End belong to the scope that
// was current when the loop was created; Body gets its own scope.
type Loop struct {
	Cond *ir.Block
	Body *ir.Block
	End  *ir.Block
}

// NewLoop creates a loop skeleton. A nil end creates a fresh exit block;
// `for` passes an exit owned by the scope outside its wrapper.
func (b *Builder) NewLoop(name string, end *ir.Block) Loop {
	cond := b.NewBlock(name + ".cond")
	body := b.NewScopedBlock(name+".body", symbols.ScopeLoop)
	if end == nil {
		end = b.NewBlock(name + ".end")
	}
	return Loop{Cond: cond, Body: body, End: end}
}

// Conditional is the skeleton of an if statement. Else is nil when the
// statement has no else branch; the false edge then goes to End.
type Conditional struct {
	Then *ir.Block
	Else *ir.Block
	End  *ir.Block
}

// False returns the target of the false edge.
func (c Conditional) False() *ir.Block {
	if c.Else != nil {
		return c.Else
	}
	return c.End
}

// NewConditional creates then and end blocks.
func (b *Builder) NewConditional(name string) Conditional {
	then := b.NewScopedBlock(name+".then", symbols.ScopeBlock)
	end := b.NewBlock(name + ".end")
	return Conditional{Then: then, End: end}
}

// NewConditionalWithElse creates then, else and end blocks.
func (b *Builder) NewConditionalWithElse(name string) Conditional {
	then := b.NewScopedBlock(name+".then", symbols.ScopeBlock)
	els := b.NewScopedBlock(name+".else", symbols.ScopeBlock)
	end := b.NewBlock(name + ".end")
	return Conditional{Then: then, Else: els, End: end}
}

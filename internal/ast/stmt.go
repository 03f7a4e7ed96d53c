package ast

import (
	"rial/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtExpr represents an expression evaluated for its effect.
	StmtExpr StmtKind = iota
	// StmtVar declares a local variable.
	StmtVar
	// StmtAssign stores into a (possibly dotted) variable path.
	StmtAssign
	// StmtCompoundAssign is `x op= y`; Desugar rewrites it into StmtAssign.
	StmtCompoundAssign
	// StmtIncDec is `x++`, `x--`, `x += step` in increment form.
	StmtIncDec
	// StmtReturn returns from the current function.
	StmtReturn
	// StmtBreak leaves the innermost loop or switch.
	StmtBreak
	// StmtContinue re-enters the innermost loop.
	StmtContinue
	// StmtIf is if / elif / else. Desugar folds Elifs into nested Else.
	StmtIf
	// StmtWhile is a pre-checked loop.
	StmtWhile
	// StmtLoop is an infinite loop left with break or return.
	StmtLoop
	// StmtFor is the C-style three-clause loop.
	StmtFor
	// StmtSwitch is a multi-way branch on an integer scrutinee.
	StmtSwitch
)

func (k StmtKind) String() string {
	switch k {
	case StmtExpr:
		return "Expr"
	case StmtVar:
		return "Var"
	case StmtAssign:
		return "Assign"
	case StmtCompoundAssign:
		return "CompoundAssign"
	case StmtIncDec:
		return "IncDec"
	case StmtReturn:
		return "Return"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtLoop:
		return "Loop"
	case StmtFor:
		return "For"
	case StmtSwitch:
		return "Switch"
	default:
		return "Unknown"
	}
}

// Stmt is a statement node.
type Stmt struct {
	Kind StmtKind
	Pos  source.Pos
	Data StmtData // Kind-specific payload
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr `msgpack:"x"`
}

func (ExprStmtData) stmtData() {}

// VarData holds data for StmtVar. Type is optional; when empty the type of
// the initializer is used.
type VarData struct {
	Name  string `msgpack:"name"`
	Type  string `msgpack:"type,omitempty"`
	Value *Expr  `msgpack:"value"`
}

func (VarData) stmtData() {}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Target []string `msgpack:"target"`
	Value  *Expr    `msgpack:"value"`
}

func (AssignData) stmtData() {}

// CompoundAssignData holds data for StmtCompoundAssign.
type CompoundAssignData struct {
	Op     BinaryOp `msgpack:"op"`
	Target []string `msgpack:"target"`
	Value  *Expr    `msgpack:"value"`
}

func (CompoundAssignData) stmtData() {}

// IncDecData holds data for StmtIncDec. A nil Step means 1 of the
// variable's type.
type IncDecData struct {
	Target    []string `msgpack:"target"`
	Step      *Expr    `msgpack:"step,omitempty"`
	Decrement bool     `msgpack:"dec,omitempty"`
}

func (IncDecData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value *Expr `msgpack:"value,omitempty"` // nil for bare return
}

func (ReturnData) stmtData() {}

// BreakData holds data for StmtBreak.
type BreakData struct{}

func (BreakData) stmtData() {}

// ContinueData holds data for StmtContinue.
type ContinueData struct{}

func (ContinueData) stmtData() {}

// ElifClause is one `elif cond { ... }` arm.
type ElifClause struct {
	Cond *Expr      `msgpack:"cond"`
	Body []*Stmt    `msgpack:"body"`
	Pos  source.Pos `msgpack:"pos"`
}

// IfData holds data for StmtIf.
type IfData struct {
	Cond  *Expr        `msgpack:"cond"`
	Then  []*Stmt      `msgpack:"then"`
	Elifs []ElifClause `msgpack:"elifs,omitempty"`
	Else  []*Stmt      `msgpack:"else,omitempty"`
	// HasElse отличает пустую ветку else от её отсутствия
	HasElse bool `msgpack:"has_else,omitempty"`
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr   `msgpack:"cond"`
	Body []*Stmt `msgpack:"body"`
}

func (WhileData) stmtData() {}

// LoopData holds data for StmtLoop.
type LoopData struct {
	Body []*Stmt `msgpack:"body"`
}

func (LoopData) stmtData() {}

// ForData holds data for StmtFor. Any clause may be nil.
type ForData struct {
	Init *Stmt   `msgpack:"init,omitempty"`
	Cond *Expr   `msgpack:"cond,omitempty"`
	Step *Stmt   `msgpack:"step,omitempty"`
	Body []*Stmt `msgpack:"body"`
}

func (ForData) stmtData() {}

// SwitchCase is a case arm. Several values on one arm share its block,
// exactly like consecutive empty cases do. A case with no body shares the
// block of the next non-empty case.
type SwitchCase struct {
	Values  []*Expr    `msgpack:"values,omitempty"`
	Default bool       `msgpack:"default,omitempty"`
	Body    []*Stmt    `msgpack:"body,omitempty"`
	Pos     source.Pos `msgpack:"pos"`
}

// SwitchData holds data for StmtSwitch.
type SwitchData struct {
	Value *Expr        `msgpack:"value"`
	Cases []SwitchCase `msgpack:"cases"`
}

func (SwitchData) stmtData() {}

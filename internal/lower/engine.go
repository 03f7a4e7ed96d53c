package lower

import (
	"sync"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/source"
	"rial/internal/symbols"
)

// Engine coordinates the declare and lower passes over a shared registry.
// All methods are safe for concurrent use on different units.
type Engine struct {
	Registry *symbols.Registry

	mu sync.Mutex
	// failed holds functions whose signature could not be declared; their
	// errors are already reported, so a missing registry entry is expected.
	failed map[*ast.FuncDecl]struct{}
}

// NewEngine creates an engine over reg.
func NewEngine(reg *symbols.Registry) *Engine {
	return &Engine{
		Registry: reg,
		failed:   make(map[*ast.FuncDecl]struct{}),
	}
}

// Input is one unit together with where its diagnostics go.
type Input struct {
	Unit     *ast.Unit
	File     source.FileID
	Reporter diag.Reporter
}

func (in Input) reporter() reporter {
	rep := in.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return reporter{rep: rep, file: in.File}
}

func (e *Engine) markFailed(fn *ast.FuncDecl) {
	e.mu.Lock()
	e.failed[fn] = struct{}{}
	e.mu.Unlock()
}

func (e *Engine) hasFailed(fn *ast.FuncDecl) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.failed[fn]
	return ok
}

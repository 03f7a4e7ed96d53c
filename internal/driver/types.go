package driver

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/observ"
	"rial/internal/pipeline"
	"rial/internal/source"
	"rial/internal/symbols"
)

// Source is one unit file handed to the compiler.
type Source struct {
	Path    string // ".rast" or ".rast.mp"; the suffix picks the decoder
	Module  string // module name derived from the path; empty skips the check
	Content []byte // nil reads Path from disk
}

// Request describes one compilation.
type Request struct {
	Sources        []Source
	BaseDir        string
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int
	Progress       pipeline.ProgressSink
	Timer          *observ.Timer
}

// Unit is the per-unit state threaded through the passes.
type Unit struct {
	Path   string
	File   source.FileID
	AST    *ast.Unit
	Module *ir.Module
	// Failed is set when the unit could not be decoded or hit a fatal
	// lowering error; later passes skip it.
	Failed bool
}

// Name returns the declared module name, or the path for undecoded units.
func (u *Unit) Name() string {
	if u.AST != nil {
		return u.AST.Module
	}
	return u.Path
}

// Result is what Compile produced. Units keep the order of Request.Sources.
type Result struct {
	FileSet  *source.FileSet
	Bag      *diag.Bag
	Registry *symbols.Registry
	Units    []*Unit
}

// HasErrors reports error diagnostics or failed units.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	if r.Bag.HasErrors() {
		return true
	}
	for _, u := range r.Units {
		if u.Failed {
			return true
		}
	}
	return false
}

// Modules returns the lowered modules of units that did not fail.
func (r *Result) Modules() []*ir.Module {
	var out []*ir.Module
	for _, u := range r.Units {
		if !u.Failed && u.Module != nil {
			out = append(out, u.Module)
		}
	}
	return out
}

// InternalError is a panic recovered at a unit boundary. It aborts the
// whole compilation.
type InternalError struct {
	Unit  string
	Stage pipeline.Stage
	Value any
	Stack []byte
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error in %s (%s): %v", e.Unit, e.Stage, e.Value)
}

package driver

import (
	"errors"
	"fmt"
	"strings"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/project"
	"rial/internal/sexpr"
	"rial/internal/source"
)

// loadSource adds the source to the file set, reading it from disk when
// no content was supplied.
func loadSource(fs *source.FileSet, bag *diag.Bag, src Source) (source.FileID, bool) {
	if src.Content != nil {
		flags := source.FileVirtual
		if strings.HasSuffix(src.Path, project.ExtBinary) {
			flags |= source.FileBinary
		}
		return fs.Add(src.Path, src.Content, flags), true
	}
	id, err := fs.Load(src.Path)
	if err != nil {
		// файла нет в FileSet, заводим пустую запись ради span
		id = fs.AddVirtual(src.Path, nil)
		report(bag, diag.IOLoadFileError, source.Span{File: id}, "failed to load unit: "+err.Error())
		return id, false
	}
	return id, true
}

// decodeUnit picks the decoder by extension and converts read errors into
// located diagnostics.
func decodeUnit(fs *source.FileSet, bag *diag.Bag, id source.FileID) (*ast.Unit, bool) {
	f, _ := fs.Get(id)
	if f.Flags&source.FileBinary != 0 {
		u, err := ast.DecodeUnit(f.Content)
		if err != nil {
			report(bag, diag.UnitMalformed, source.Span{File: id}, err.Error())
			return nil, false
		}
		return u, true
	}

	u, err := ast.ReadUnit(f.Content)
	if err == nil {
		return u, true
	}
	var (
		readErr   *ast.ReadError
		syntaxErr *sexpr.SyntaxError
		off       uint32
		msg       = err.Error()
	)
	switch {
	case errors.As(err, &readErr):
		off, msg = readErr.Off, readErr.Msg
	case errors.As(err, &syntaxErr):
		off, msg = syntaxErr.Off, syntaxErr.Msg
	}
	lc := fs.Resolve(id, off)
	report(bag, diag.UnitMalformed, source.Span{File: id, Pos: source.Pos{Line: lc.Line, Col: lc.Col}}, msg)
	return nil, false
}

func report(bag *diag.Bag, code diag.Code, span source.Span, msg string) {
	diag.ReportError(diag.BagReporter{Bag: bag}, code, span, msg).Emit()
}

// checkModules reports units whose declared module disagrees with their
// path, and modules declared by more than one unit. The later unit fails.
func checkModules(bag *diag.Bag, sources []Source, units []*Unit) {
	seen := make(map[string]*Unit, len(units))
	for i, u := range units {
		if u.Failed {
			continue
		}
		span := source.Span{File: u.File, Pos: u.AST.Pos}
		if want := sources[i].Module; want != "" && want != u.AST.Module {
			diag.ReportError(diag.BagReporter{Bag: bag}, diag.ProjModuleClash, span,
				fmt.Sprintf("unit declares module %q but its path maps to %q", u.AST.Module, want)).Emit()
			u.Failed = true
			continue
		}
		if prev, ok := seen[u.AST.Module]; ok {
			diag.ReportError(diag.BagReporter{Bag: bag}, diag.ProjModuleClash, span,
				fmt.Sprintf("module %q is already declared", u.AST.Module)).
				WithNote(source.Span{File: prev.File, Pos: prev.AST.Pos}, "first declared here").
				Emit()
			u.Failed = true
			continue
		}
		seen[u.AST.Module] = u
	}
}

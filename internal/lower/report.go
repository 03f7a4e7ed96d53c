package lower

import (
	"errors"
	"fmt"

	"rial/internal/diag"
	"rial/internal/source"
	"rial/internal/symbols"
	"rial/internal/types"
)

type reporter struct {
	rep  diag.Reporter
	file source.FileID
}

func (r reporter) span(pos source.Pos) source.Span {
	return source.At(r.file, pos)
}

func (r reporter) errorf(code diag.Code, pos source.Pos, format string, args ...any) {
	diag.ReportError(r.rep, code, r.span(pos), fmt.Sprintf(format, args...)).Emit()
}

func (r reporter) warnf(code diag.Code, pos source.Pos, format string, args ...any) {
	diag.ReportWarning(r.rep, code, r.span(pos), fmt.Sprintf(format, args...)).Emit()
}

// lookupError reports a failed symbol or type lookup. notFound is used
// when nothing matched at all.
func (r reporter) lookupError(err error, notFound diag.Code, pos source.Pos, what string) {
	var (
		amb *symbols.AmbiguousError
		acc *symbols.AccessError
	)
	switch {
	case errors.As(err, &amb):
		b := diag.ReportError(r.rep, diag.LowAmbiguousReference, r.span(pos),
			fmt.Sprintf("ambiguous reference to %s %q", amb.Kind, what))
		for _, c := range amb.Candidates {
			b.WithNote(r.span(pos), "candidate: "+c)
		}
		b.Emit()
	case errors.As(err, &acc):
		r.errorf(diag.LowAccessDenied, pos, "%s %s %q is not visible from %s", acc.Access, acc.Kind, acc.Key, acc.From)
	case errors.Is(err, types.ErrUnknownType):
		r.errorf(diag.LowUnknownType, pos, "unknown type %q", what)
	default:
		r.errorf(notFound, pos, "unknown %s", what)
	}
}

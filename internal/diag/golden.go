package diag

import (
	"fmt"
	"sort"
	"strings"

	"rial/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Module   string
	Pos      source.Pos
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and scenario tests:
//
//	error LOW3001 app:main:3:5 unknown identifier "x"
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, goldenDiagnostic{
			Severity: severityLabel(d.Severity),
			Code:     d.Code.ID(),
			Module:   fs.Module(d.Primary.File),
			Pos:      d.Primary.Pos,
			Message:  sanitizeMessage(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Module:   fs.Module(note.Span.File),
				Pos:      note.Span.Pos,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Module != dj.Module {
			return di.Module < dj.Module
		}
		if di.Pos != dj.Pos {
			return di.Pos.Before(dj.Pos)
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Module, d.Pos.Line, d.Pos.Col, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"rial/internal/diag"
	"rial/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.FgBlue)
	moduleColor  = color.New(color.Bold)
	fileColor    = color.New(color.Faint)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<module>[<line>:<col>] <SEV> <CODE>: <Message>
//
// затем, по опциям, путь к файлу единицы и Notes в том же формате.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeader(w, d, fs, opts)
		if opts.ShowFile {
			if f, ok := fs.Get(d.Primary.File); ok {
				line := "  --> " + displayPath(f, opts.PathMode, fs.BaseDir())
				fmt.Fprintln(w, paint(opts.Color, fileColor, line))
			}
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			loc := fmt.Sprintf("%s[%s]", fs.Module(n.Span.File), n.Span.Pos)
			fmt.Fprintf(w, "  %s %s %s\n", paint(opts.Color, noteColor, "note:"), loc, n.Msg)
		}
	}
}

func writeHeader(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	loc := fmt.Sprintf("%s[%s]", fs.Module(d.Primary.File), d.Primary.Pos)
	sev := d.Severity.String()
	fmt.Fprintf(w, "%s %s %s: %s\n",
		paint(opts.Color, moduleColor, loc),
		paint(opts.Color, severityColor(d.Severity), sev),
		d.Code.ID(),
		d.Message,
	)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// paint не зависит от глобального color.NoColor: решение принимает вызывающий.
func paint(enabled bool, c *color.Color, s string) string {
	if !enabled {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Summary prints the trailing "N errors, M warnings" line.
func Summary(w io.Writer, bag *diag.Bag, useColor bool) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	line := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	if errs > 0 {
		fmt.Fprintln(w, paint(useColor, errorColor, line))
		return
	}
	fmt.Fprintln(w, paint(useColor, warningColor, line))
}

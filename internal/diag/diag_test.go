package diag

import (
	"slices"
	"sync"
	"testing"

	"github.com/nalgeon/be"

	"rial/internal/source"
)

func span(line, col uint32) source.Span {
	return source.Span{File: 0, Pos: source.Pos{Line: line, Col: col}}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	be.True(t, b.Add(NewError(LowUnknownIdentifier, span(1, 1), "a")))
	be.True(t, b.Add(NewError(LowUnknownIdentifier, span(1, 2), "b")))
	be.True(t, !b.Add(NewError(LowUnknownIdentifier, span(1, 3), "c")))
	be.Equal(t, b.Len(), 2)
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, LowTrailingEmptyCase, span(4, 1), "w"))
	b.Add(NewError(LowUnknownType, span(2, 9), "t"))
	b.Add(NewError(LowUnknownType, span(2, 9), "t"))
	b.Add(NewError(LowInvalidCast, span(2, 3), "c"))

	b.Dedup()
	b.Sort()

	items := b.Items()
	be.Equal(t, len(items), 3)
	be.Equal(t, items[0].Code, LowInvalidCast)
	be.Equal(t, items[1].Code, LowUnknownType)
	be.Equal(t, items[2].Code, LowTrailingEmptyCase)
	be.True(t, b.HasErrors())
	be.True(t, b.HasWarnings())
}

func TestBagConcurrentAdd(t *testing.T) {
	b := NewBag(1000)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				b.Add(NewError(LowUnknownIdentifier, span(uint32(i+1), uint32(j+1)), "x"))
			}
		}()
	}
	wg.Wait()
	be.Equal(t, b.Len(), 400)
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	rb := ReportError(BagReporter{Bag: bag}, LowAmbiguousReference, span(3, 4), "ambiguous")
	rb.WithNote(span(1, 1), "candidate a").WithNote(span(2, 1), "candidate b")
	rb.Emit()
	rb.Emit()

	items := bag.Items()
	be.Equal(t, len(items), 1)
	be.Equal(t, len(items[0].Notes), 2)
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := NewError(LowAmbiguousReference, span(1, 1), "x").WithNote(span(2, 1), "a")
	base.Notes = slices.Grow(base.Notes, 4)
	left := base.WithNote(span(3, 1), "left")
	right := base.WithNote(span(4, 1), "right")
	be.Equal(t, left.Notes[1].Msg, "left")
	be.Equal(t, right.Notes[1].Msg, "right")
	be.Equal(t, len(base.Notes), 1)
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{UnitMalformed, "UNIT1001"},
		{DeclDuplicate, "DCL2001"},
		{LowUnknownIdentifier, "LOW3001"},
		{ProjBadManifest, "PRJ5001"},
		{VerUnterminated, "VER6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.code.ID(), tt.want)
	}
	be.Equal(t, LowMissingReturn.String(), "[LOW3012]: Missing return")
}

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.rast", nil)
	fs.SetModule(id, "app:main")

	diags := []Diagnostic{
		NewError(LowDuplicateDefaultCase, source.At(id, source.Pos{Line: 7, Col: 3}), "second default\nignored").
			WithNote(source.At(id, source.Pos{Line: 5, Col: 3}), "first default here"),
		New(SevWarning, LowTrailingEmptyCase, source.At(id, source.Pos{Line: 2, Col: 1}), "empty"),
	}

	want := "warning LOW3015 app:main:2:1 empty\n" +
		"note LOW3006 app:main:5:3 first default here\n" +
		"error LOW3006 app:main:7:3 second default ignored"
	be.Equal(t, FormatGoldenDiagnostics(diags, fs, true), want)
}

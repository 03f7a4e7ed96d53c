package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nalgeon/be"

	"rial/internal/ast"
	"rial/internal/diag"
	"rial/internal/observ"
	"rial/internal/pipeline"
)

const libSrc = `
(unit "app:geo" @1:1
  (struct "Point" :access public
    (field "x" "Int32")
    (field "y" "Int32")
    (method "sum" :access public :ret "Int32"
      (body (return (+ (id "x") (id "y")))))))`

const mainSrc = `
(unit "app:main" @1:1 (using "app:geo")
  (func "main" :ret "Int32"
    (body
      (var "p" (new "Point" (int 1) (int 2)))
      (return (mcall "p" "sum")))))`

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

type recorder struct {
	mu     sync.Mutex
	events []pipeline.Event
}

func (r *recorder) OnEvent(e pipeline.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func TestCompileAcrossUnits(t *testing.T) {
	lib, err := ast.ReadUnit([]byte(libSrc))
	be.Err(t, err, nil)
	bin, err := ast.MarshalUnit(lib)
	be.Err(t, err, nil)

	rec := &recorder{}
	timer := observ.NewTimer()
	res, err := Compile(context.Background(), Request{
		Sources: []Source{
			{Path: "geo.rast.mp", Module: "app:geo", Content: bin},
			{Path: "main.rast", Module: "app:main", Content: []byte(mainSrc)},
		},
		Jobs:     2,
		Progress: rec,
		Timer:    timer,
	})
	be.Err(t, err, nil)
	be.Equal(t, codes(res.Bag), []diag.Code(nil))
	be.Equal(t, res.HasErrors(), false)
	be.Equal(t, len(res.Modules()), 2)
	be.Equal(t, res.FileSet.Module(res.Units[0].File), "app:geo")

	var stages []pipeline.Stage
	for _, e := range rec.events {
		if e.Unit == "" && e.Status == pipeline.StatusDone {
			stages = append(stages, e.Stage)
		}
	}
	be.Equal(t, stages, []pipeline.Stage{
		pipeline.StageDecode,
		pipeline.StageDeclare,
		pipeline.StageDeclare,
		pipeline.StageLower,
		pipeline.StageVerify,
	})
	be.Equal(t, len(timer.Report().Phases), 6)
}

func TestMalformedUnitIsReportedWithPosition(t *testing.T) {
	res, err := Compile(context.Background(), Request{
		Sources: []Source{
			{Path: "bad.rast", Content: []byte("(unit \"app:bad\"\n  (func))")},
			{Path: "geo.rast", Content: []byte(libSrc)},
		},
	})
	be.Err(t, err, nil)
	items := res.Bag.Items()
	be.Equal(t, len(items), 1)
	be.Equal(t, items[0].Code, diag.UnitMalformed)
	be.Equal(t, items[0].Primary.Pos.Line, uint32(2))
	be.True(t, res.Units[0].Failed)
	be.True(t, !res.Units[1].Failed)
	be.Equal(t, len(res.Modules()), 1)
}

func TestModuleClash(t *testing.T) {
	res, err := Compile(context.Background(), Request{
		Sources: []Source{
			{Path: "a.rast", Content: []byte(libSrc)},
			{Path: "b.rast", Content: []byte(libSrc)},
			{Path: "c.rast", Module: "app:other", Content: []byte(mainSrc)},
		},
	})
	be.Err(t, err, nil)
	be.Equal(t, codes(res.Bag), []diag.Code{diag.ProjModuleClash, diag.ProjModuleClash})
	be.Equal(t, len(res.Bag.Items()[0].Notes)+len(res.Bag.Items()[1].Notes), 1)
	be.True(t, res.HasErrors())
}

func TestMissingFileAndNoUnits(t *testing.T) {
	res, err := Compile(context.Background(), Request{
		Sources: []Source{{Path: filepath.Join(t.TempDir(), "gone.rast")}},
	})
	be.Err(t, err, nil)
	be.Equal(t, codes(res.Bag), []diag.Code{diag.IOLoadFileError})

	res, err = Compile(context.Background(), Request{})
	be.Err(t, err, nil)
	be.Equal(t, codes(res.Bag), []diag.Code{diag.ProjNoUnits})
}

func TestReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geo.rast")
	be.Err(t, os.WriteFile(path, []byte(libSrc), 0o644), nil)

	res, err := Compile(context.Background(), Request{Sources: []Source{{Path: path}}})
	be.Err(t, err, nil)
	be.Equal(t, res.Bag.Len(), 0)
	be.Equal(t, len(res.Modules()), 1)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, Request{Sources: []Source{{Path: "geo.rast", Content: []byte(libSrc)}}})
	be.True(t, errors.Is(err, context.Canceled))
}

func TestPanicBecomesInternalError(t *testing.T) {
	c := &compilation{}
	u := &Unit{Path: "x.rast"}
	err := c.guard(context.Background(), pipeline.StageLower, u, func(context.Context, *Unit) error {
		panic("unknown expression kind")
	})
	var ice *InternalError
	be.True(t, errors.As(err, &ice))
	be.Equal(t, ice.Unit, "x.rast")
	be.Equal(t, ice.Stage, pipeline.StageLower)
	be.True(t, len(ice.Stack) > 0)
}

// Package driver runs the rial passes over a set of unit files: decode,
// declare (struct shells, then bodies and signatures), lower and verify.
// Passes are separated by barriers; units inside a pass run in parallel.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"

	"golang.org/x/sync/errgroup"

	"rial/internal/diag"
	"rial/internal/lower"
	"rial/internal/pipeline"
	"rial/internal/source"
	"rial/internal/symbols"
	"rial/internal/trace"
	"rial/internal/verify"
)

type compilation struct {
	req    Request
	res    *Result
	jobs   int
	engine *lower.Engine
	rep    diag.Reporter
}

// Compile lowers req.Sources into LLVM modules. The returned error is
// non-nil only for cancellation, declare-protocol failures and internal
// errors; user errors end up in Result.Bag.
func Compile(ctx context.Context, req Request) (*Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile")
	res := &Result{
		FileSet:  source.NewFileSetWithBase(req.BaseDir),
		Bag:      diag.NewBag(req.MaxDiagnostics),
		Registry: symbols.NewRegistry(),
		Units:    make([]*Unit, len(req.Sources)),
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	c := &compilation{
		req:    req,
		res:    res,
		jobs:   jobs,
		engine: lower.NewEngine(res.Registry),
		rep:    diag.BagReporter{Bag: res.Bag},
	}
	err := c.run(ctx)
	res.Bag.Dedup()
	res.Bag.Sort()
	span.WithExtra("units", strconv.Itoa(len(res.Units))).End(outcome(err))
	return res, err
}

func (c *compilation) run(ctx context.Context) error {
	if len(c.req.Sources) == 0 {
		report(c.res.Bag, diag.ProjNoUnits, source.Span{}, "no units to compile")
		return nil
	}

	// Файлы грузим последовательно: FileID должны быть стабильны между запусками.
	stop := c.req.Timer.Track("read")
	for i, src := range c.req.Sources {
		id, ok := loadSource(c.res.FileSet, c.res.Bag, src)
		c.res.Units[i] = &Unit{Path: src.Path, File: id, Failed: !ok}
	}
	stop(fmt.Sprintf("%d files", len(c.req.Sources)))

	if err := c.pass(ctx, pipeline.StageDecode, "decode", c.decode); err != nil {
		return err
	}
	checkModules(c.res.Bag, c.req.Sources, c.res.Units)

	if err := c.pass(ctx, pipeline.StageDeclare, "declare.structs", c.declareStructs); err != nil {
		return err
	}
	if err := c.pass(ctx, pipeline.StageDeclare, "declare.bodies", c.declareBodies); err != nil {
		return err
	}
	c.res.Registry.Freeze()
	trace.Point(ctx, trace.ScopePass, "registry.frozen", counts(c.res.Registry))

	if err := c.pass(ctx, pipeline.StageLower, "lower", c.lower); err != nil {
		return err
	}
	return c.pass(ctx, pipeline.StageVerify, "verify", c.verify)
}

// pass runs fn over every live unit and waits for all of them.
func (c *compilation) pass(ctx context.Context, stage pipeline.Stage, name string, fn func(context.Context, *Unit) error) error {
	var live []*Unit
	var names []string
	for _, u := range c.res.Units {
		if !u.Failed {
			live = append(live, u)
			names = append(names, u.Name())
		}
	}
	if len(live) == 0 {
		return nil
	}

	ctx, span := trace.Start(ctx, trace.ScopePass, name)
	done := pipeline.StageAll(c.req.Progress, names, stage)
	stop := c.req.Timer.Track(name)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(c.jobs, len(live)))
	for _, u := range live {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return c.guard(gctx, stage, u, fn)
		})
	}
	err := g.Wait()

	stop(fmt.Sprintf("%d units", len(live)))
	done(err)
	span.End(outcome(err))
	return err
}

// guard turns a panic inside fn into an InternalError.
func (c *compilation) guard(ctx context.Context, stage pipeline.Stage, u *Unit, fn func(context.Context, *Unit) error) (err error) {
	ctx, span := trace.Start(ctx, trace.ScopeUnit, u.Name())
	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Unit: u.Name(), Stage: stage, Value: r, Stack: debug.Stack()}
		}
		span.End(outcome(err))
	}()
	return fn(ctx, u)
}

func (c *compilation) fail(u *Unit, stage pipeline.Stage, err error) {
	u.Failed = true
	pipeline.Emit(c.req.Progress, pipeline.Event{Unit: u.Name(), Stage: stage, Status: pipeline.StatusError, Err: err})
}

func (c *compilation) input(u *Unit) lower.Input {
	return lower.Input{Unit: u.AST, File: u.File, Reporter: c.rep}
}

func (c *compilation) decode(_ context.Context, u *Unit) error {
	unit, ok := decodeUnit(c.res.FileSet, c.res.Bag, u.File)
	if !ok {
		c.fail(u, pipeline.StageDecode, nil)
		return nil
	}
	u.AST = unit
	c.res.FileSet.SetModule(u.File, unit.Module)
	return nil
}

func (c *compilation) declareStructs(_ context.Context, u *Unit) error {
	if err := c.engine.DeclareStructs(c.input(u)); err != nil {
		return fmt.Errorf("%s: declare structs: %w", u.Name(), err)
	}
	return nil
}

func (c *compilation) declareBodies(_ context.Context, u *Unit) error {
	if err := c.engine.DeclareUnit(c.input(u)); err != nil {
		return fmt.Errorf("%s: declare: %w", u.Name(), err)
	}
	return nil
}

func (c *compilation) lower(_ context.Context, u *Unit) error {
	m, err := c.engine.LowerUnit(c.input(u))
	var fatal *lower.FatalError
	switch {
	case errors.As(err, &fatal):
		c.fail(u, pipeline.StageLower, err)
		return nil
	case err != nil:
		return fmt.Errorf("%s: lower: %w", u.Name(), err)
	}
	u.Module = m
	return nil
}

var verifyCodes = map[verify.Kind]diag.Code{
	verify.Unterminated:  diag.VerUnterminated,
	verify.ForeignTarget: diag.VerForeignTarget,
	verify.PhiIncoming:   diag.VerPhiIncoming,
}

func (c *compilation) verify(ctx context.Context, u *Unit) error {
	errs := verify.Check(u.Module)
	for _, e := range errs {
		code, ok := verifyCodes[e.Kind]
		if !ok {
			code = diag.VerMalformed
		}
		report(c.res.Bag, code, source.Span{File: u.File}, e.Error())
	}
	if len(errs) > 0 {
		c.fail(u, pipeline.StageVerify, errs[0])
		trace.Point(ctx, trace.ScopeUnit, "verify.failed", strconv.Itoa(len(errs)))
	}
	return nil
}

func counts(reg *symbols.Registry) string {
	structs, funcs, globals := reg.Counts()
	return fmt.Sprintf("%d structs, %d funcs, %d globals", structs, funcs, globals)
}

func outcome(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return ""
}

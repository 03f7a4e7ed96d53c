package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rial/internal/diagfmt"
	"rial/internal/driver"
	"rial/internal/observ"
	"rial/internal/pipeline"
	"rial/internal/ui"
)

// errDiagnostics is returned after error diagnostics were printed; main
// only sets the exit status.
var errDiagnostics = errors.New("compilation failed")

// compileOptions collects the persistent flags that shape a compilation.
type compileOptions struct {
	color          bool
	timings        bool
	useTUI         bool
	jobs           int
	maxDiagnostics int
	pathMode       diagfmt.PathMode
	jsonDiags      bool
}

func readCompileOptions(cmd *cobra.Command) (compileOptions, error) {
	flags := cmd.Root().PersistentFlags()
	var opts compileOptions

	colorValue, err := flags.GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	if opts.color, err = readColorMode(colorValue); err != nil {
		return opts, err
	}
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.jobs < 0 {
		return opts, fmt.Errorf("--jobs must not be negative")
	}
	if opts.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return opts, err
	}
	opts.useTUI = shouldUseTUI(mode)
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	opts.pathMode = diagfmt.ParsePathMode(pathMode)
	format, err := flags.GetString("diagnostics-format")
	if err != nil {
		return opts, fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	switch format {
	case "pretty":
	case "json":
		opts.jsonDiags = true
	default:
		return opts, fmt.Errorf("invalid --diagnostics-format %q (expected pretty|json)", format)
	}
	return opts, nil
}

// request builds a driver request from the flags; manifest values apply
// where the flags were left at zero.
func (o compileOptions) request(sources []driver.Source, baseDir string, jobs, maxDiagnostics int) driver.Request {
	req := driver.Request{
		Sources:        sources,
		BaseDir:        baseDir,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	if o.jobs > 0 {
		req.Jobs = o.jobs
	}
	if o.maxDiagnostics > 0 {
		req.MaxDiagnostics = o.maxDiagnostics
	}
	if o.timings {
		req.Timer = observ.NewTimer()
	}
	return req
}

// emitFunc runs after a successful compilation, still under the progress
// UI, and reports its own stage events through sink.
type emitFunc func(res *driver.Result, sink pipeline.ProgressSink) error

// compile runs the driver, optionally under the progress UI, and then emit
// when the result has no errors.
func compile(ctx context.Context, title string, req driver.Request, opts compileOptions, emit emitFunc) (*driver.Result, error) {
	run := func(sink pipeline.ProgressSink) (*driver.Result, error) {
		req.Progress = sink
		res, err := driver.Compile(ctx, req)
		if err != nil || res.HasErrors() || emit == nil {
			return res, err
		}
		stop := req.Timer.Track("emit")
		err = emit(res, sink)
		stop(fmt.Sprintf("%d modules", len(res.Modules())))
		return res, err
	}

	if !opts.useTUI {
		return run(nil)
	}

	names := make([]string, len(req.Sources))
	for i, src := range req.Sources {
		names[i] = src.Path
		if src.Module != "" {
			names[i] = src.Module
		}
	}
	events := make(chan pipeline.Event, 64)
	var (
		res *driver.Result
		err error
	)
	go func() {
		defer close(events)
		res, err = run(pipeline.ChannelSink{Ch: events})
	}()
	uiErr := ui.Run(title, names, events)
	// UI может завершиться раньше (ctrl+c), дочитываем канал
	for range events {
	}
	if uiErr != nil {
		fmt.Fprintf(os.Stderr, "ui: %v\n", uiErr)
	}
	return res, err
}

// finish prints diagnostics and timings and maps the outcome to the
// command error.
func finish(w io.Writer, res *driver.Result, err error, opts compileOptions, timer *observ.Timer) error {
	switch {
	case res != nil && opts.jsonDiags:
		jsonErr := diagfmt.JSON(w, res.Bag, res.FileSet, diagfmt.JSONOpts{
			PathMode:     opts.pathMode,
			IncludeNotes: true,
		})
		if jsonErr != nil && err == nil {
			err = jsonErr
		}
	case res != nil:
		diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     opts.color,
			PathMode:  opts.pathMode,
			ShowNotes: true,
			ShowFile:  true,
		})
		if res.Bag.HasWarnings() {
			diagfmt.Summary(w, res.Bag, opts.color)
		}
	}
	if opts.timings && timer != nil {
		fmt.Fprint(w, timer.Summary())
	}
	if err != nil {
		return err
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	return nil
}

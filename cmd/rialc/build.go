package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rial/internal/diag"
	"rial/internal/driver"
	"rial/internal/pipeline"
	"rial/internal/project"
	"rial/internal/source"
)

const noManifestMessage = "no " + project.ManifestName + " found in %s or its parents"

var buildCmd = &cobra.Command{
	Use:   "build [flags] [dir]",
	Short: "Lower every unit of a rial project",
	Long: "Build reads " + project.ManifestName + ", lowers all units under the source\n" +
		"directory and writes one <module>.ll file per module into the output directory.",
	Args: cobra.MaximumNArgs(1),
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().Bool("emit-ir", false, "also print the IR of every module to stdout")
	buildCmd.Flags().StringP("out", "o", "", "output directory (overrides [build].out)")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	opts, err := readCompileOptions(cmd)
	if err != nil {
		return err
	}
	emitIR, err := cmd.Flags().GetBool("emit-ir")
	if err != nil {
		return err
	}
	outFlag, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	manifestPath, ok, err := project.FindManifest(dir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf(noManifestMessage, dir)
	}
	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	if outFlag != "" {
		manifest.Build.Out = outFlag
	}
	emitIR = emitIR || manifest.Build.EmitIR

	units, err := project.CollectUnits(manifest.Package.Name, manifest.SrcDir())
	if err != nil {
		return fmt.Errorf("collect units: %w", err)
	}
	sources := make([]driver.Source, len(units))
	for i, u := range units {
		sources[i] = driver.Source{Path: u.Path, Module: u.Module}
	}

	req := opts.request(sources, manifest.Root, manifest.Build.Jobs, manifest.Build.MaxDiagnostics)
	outDir := manifest.OutDir()
	emit := func(res *driver.Result, sink pipeline.ProgressSink) error {
		return writeModules(res, outDir, sink)
	}
	res, err := compile(cmd.Context(), manifest.Package.Name, req, opts, emit)
	if err == nil && emitIR && !res.HasErrors() {
		printModules(cmd.OutOrStdout(), res)
	}
	return finish(cmd.ErrOrStderr(), res, err, opts, req.Timer)
}

// outputFile maps a module name to its .ll file name.
func outputFile(module string) string {
	return strings.ReplaceAll(module, ":", ".") + ".ll"
}

// writeModules writes every lowered module into outDir. Write failures
// become IO diagnostics on the unit.
func writeModules(res *driver.Result, outDir string, sink pipeline.ProgressSink) error {
	var names []string
	for _, u := range res.Units {
		if u.Module != nil && !u.Failed {
			names = append(names, u.Name())
		}
	}
	done := pipeline.StageAll(sink, names, pipeline.StageEmit)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		done(err)
		return fmt.Errorf("create output directory: %w", err)
	}
	rep := diag.BagReporter{Bag: res.Bag}
	for _, u := range res.Units {
		if u.Module == nil || u.Failed {
			continue
		}
		path := filepath.Join(outDir, outputFile(u.Name()))
		if err := os.WriteFile(path, []byte(u.Module.String()), 0o644); err != nil {
			diag.ReportError(rep, diag.IOWriteError, source.Span{File: u.File}, err.Error()).Emit()
			pipeline.Emit(sink, pipeline.Event{Unit: u.Name(), Stage: pipeline.StageEmit, Status: pipeline.StatusError, Err: err})
			continue
		}
		pipeline.Emit(sink, pipeline.Event{Unit: u.Name(), Stage: pipeline.StageEmit, Status: pipeline.StatusDone})
	}
	res.Bag.Sort()
	done(nil)
	return nil
}

func printModules(w io.Writer, res *driver.Result) {
	for _, u := range res.Units {
		if u.Module == nil || u.Failed {
			continue
		}
		fmt.Fprintf(w, "; module %s\n%s\n", u.Name(), u.Module.String())
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rial/internal/driver"
	"rial/internal/project"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <files...>",
	Short: "Lower unit files and print their IR",
	Long:  "Lower compiles the given .rast/.rast.mp files together and prints every module to stdout.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  lowerExecution,
}

func lowerExecution(cmd *cobra.Command, args []string) error {
	opts, err := readCompileOptions(cmd)
	if err != nil {
		return err
	}
	// IR идёт в stdout, прогресс-бар там не нужен
	opts.useTUI = false

	sources := make([]driver.Source, 0, len(args))
	for _, path := range args {
		if !project.IsUnitFile(path) {
			return fmt.Errorf("%s: expected %s or %s file", path, project.ExtText, project.ExtBinary)
		}
		sources = append(sources, driver.Source{Path: path})
	}
	req := opts.request(sources, "", 0, project.DefaultMaxDiagnostics)
	res, err := compile(cmd.Context(), "lower", req, opts, nil)
	if err == nil && !res.HasErrors() {
		printModules(cmd.OutOrStdout(), res)
	}
	return finish(cmd.ErrOrStderr(), res, err, opts, req.Timer)
}

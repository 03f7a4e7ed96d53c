package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rial/internal/ast"
	"rial/internal/project"
)

var packCmd = &cobra.Command{
	Use:   "pack <in.rast> [out.rast.mp]",
	Short: "Convert a text unit to the msgpack form",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  packExecution,
}

func packExecution(cmd *cobra.Command, args []string) error {
	in := args[0]
	if !strings.HasSuffix(in, project.ExtText) {
		return fmt.Errorf("%s: expected a %s file", in, project.ExtText)
	}
	out := packOutput(in)
	if len(args) == 2 {
		out = args[1]
	}
	if !strings.HasSuffix(out, project.ExtBinary) {
		return fmt.Errorf("%s: output must end with %s", out, project.ExtBinary)
	}

	src, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	unit, err := ast.ReadUnit(src)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	data, err := ast.MarshalUnit(unit)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "packed %s (%s) -> %s\n", in, unit.Module, out)
	return nil
}

// packOutput places the binary unit next to the text one.
func packOutput(in string) string {
	return strings.TrimSuffix(in, project.ExtText) + project.ExtBinary
}

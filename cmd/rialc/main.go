// Command rialc lowers rial unit files to LLVM IR.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rial/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "rialc",
	Short:         "rial compiler back end",
	Long:          `rialc lowers decoded rial units (.rast, .rast.mp) into LLVM IR modules.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startSession(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopSession(cmd)
	},
}

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 = manifest or 100)")
	flags.Int("jobs", 0, "units lowered in parallel (0 = manifest or GOMAXPROCS)")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
	flags.String("diagnostics-format", "pretty", "diagnostics output (pretty|json)")
	flags.String("path-mode", "auto", "unit paths in diagnostics (auto|absolute|relative|basename)")

	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 0, "events kept by the ring tracer")

	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file")
	flags.String("runtime-trace", "", "write a runtime trace to file")
}

// main executes the root command. Any error exits with status 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		reportFailure(rootCmd, err)
		stopSession(rootCmd)
		os.Exit(1)
	}
}

// reportFailure prints err unless the command already rendered it.
func reportFailure(cmd *cobra.Command, err error) {
	if errors.Is(err, errDiagnostics) || reportInternal(cmd.ErrOrStderr(), err) {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "rialc: %v\n", err)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

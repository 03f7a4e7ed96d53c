package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rial/internal/prof"
)

// setupProfiling inspects persistent profiling flags and starts the
// requested profiles.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	root := cmd.Root()

	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	s, err := prof.Start(prof.Options{CPU: cpuProfile, Mem: memProfile, Trace: tracePath})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return s, nil
}

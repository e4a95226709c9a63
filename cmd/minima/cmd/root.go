package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minima",
		Short: "minima runs optimisation benchmarks over finite-sum objectives.",
		Long: `minima generates finite-sum minimisation problems, runs the configured
optimisers on them, and checks that every run stops with the status its
benchmark expects.

Benchmarks are described by YAML files; the run command accepts glob patterns
matching them as arguments.`,
	}

	cmd.AddCommand(
		versionCmd(),
		runCmd(),
	)

	return cmd
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/minimaproject/minima/internal/minima"
)

func versionCmd() *cobra.Command {
	a := minima.New()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Version()
		},
	}
	return cmd
}

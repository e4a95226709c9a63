package cmd

import (
	"github.com/spf13/cobra"

	"github.com/minimaproject/minima/internal/common"
	"github.com/minimaproject/minima/internal/common/app"
	"github.com/minimaproject/minima/internal/minima"
	"github.com/minimaproject/minima/internal/minima/configuration"
)

func runCmd() *cobra.Command {
	a := minima.New()
	cmd := &cobra.Command{
		Use:   "run [patterns]",
		Short: "Run the benchmark files matching the given glob patterns.",
		Long: `Run the benchmark files matching the given glob patterns. Without arguments,
the patterns configured under benchmarks in the application config are run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			common.ConfigureLogging()
			common.BindCommandlineArguments()

			overrideConfig, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			var config configuration.MinimaConfig
			common.LoadConfig(&config, "./config/minima", overrideConfig)
			a.Params.Config = &config

			shutdownMetrics := common.ServeMetrics(config.MetricsPort)
			defer shutdownMetrics()

			patterns := args
			if len(patterns) == 0 {
				patterns = []string{config.Benchmarks}
			}
			return a.RunSuiteFiles(app.CreateContextWithShutdown(), patterns)
		},
	}

	cmd.Flags().String("config", "", "Fully qualified path to application configuration file.")

	return cmd
}

package main

import (
	"time"

	"github.com/spf13/cobra"

	"filmtrack/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var development bool
	var statsInterval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Hold the data directory open until interrupted",
		Long: "Open the data directory, resolve sync conflict copies, and keep the lock " +
			"and checkpoint schedule running until SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:      ctx.logLevel(""),
				Development:   development,
				StatsInterval: statsInterval,
			})
		},
	}

	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log output")
	cmd.Flags().DurationVar(&statsInterval, "stats-interval", 0, "How often to log usage statistics")
	return cmd
}

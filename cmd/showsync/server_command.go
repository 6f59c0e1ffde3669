package main

import (
	"github.com/spf13/cobra"

	"showsync/internal/daemonrun"
)

func newServerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run reconciliation passes forever on the configured interval",
		Long: `Run one reconciliation pass immediately, then one pass every
sync.interval_seconds after the previous pass finished. Stops on SIGINT or
SIGTERM. Only one server may run per data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: ctx.logLevel()})
		},
	}
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"showsync/internal/daemonrun"
	"showsync/internal/organizer"
)

func newOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single reconciliation pass over every task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.consoleLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			rt, err := daemonrun.Build(cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.Daemon.Once(runCtx)
			if report == nil {
				return err
			}
			printReport(cmd, report)
			if err != nil {
				return fmt.Errorf("pass finished with failures: %w", err)
			}
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, report *organizer.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d task(s), %d show(s), %d episode(s) placed, %d failure(s)\n",
		report.RunID, report.Tasks, report.Shows, report.Moved, len(report.Failures))
	for _, failure := range report.Failures {
		fmt.Fprintf(out, "  - %v\n", failure)
	}
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"showsync/internal/api"
	"showsync/internal/daemonctl"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(ctx)
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				if daemonctl.IsUnavailable(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "Server is not running")
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				statusRows(status),
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ask a running server to start a pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(ctx)
			if err != nil {
				return err
			}
			resp, err := client.TriggerSync(cmd.Context())
			if err != nil {
				if daemonctl.IsUnavailable(err) {
					return fmt.Errorf("server is not running; use \"showsync once\" instead")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func apiClient(ctx *commandContext) (*daemonctl.Client, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return daemonctl.NewClient(cfg.API.Bind, cfg.API.Token)
}

func statusRows(status api.DaemonStatus) [][]string {
	rows := [][]string{
		{"PID", strconv.Itoa(status.PID)},
		{"Syncing", yesNo(status.Syncing)},
		{"Interval", (time.Duration(status.IntervalSeconds) * time.Second).String()},
		{"Tasks", strconv.Itoa(status.Tasks)},
		{"Passes", strconv.Itoa(status.Passes)},
		{"Started", orDash(status.StartedAt)},
		{"Next pass", orDash(status.NextPassAt)},
	}
	if last := status.LastPass; last != nil {
		rows = append(rows,
			[]string{"Last run", last.RunID},
			[]string{"Last placed", strconv.Itoa(last.Moved)},
			[]string{"Last failures", strconv.Itoa(len(last.Failures))},
		)
		for _, failure := range last.Failures {
			label := failure.Task
			if failure.Show != "" {
				label += " / " + failure.Show
			}
			rows = append(rows, []string{"  " + label, failure.Error})
		}
	}
	return rows
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

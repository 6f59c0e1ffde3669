package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"showsync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded passes and placements",
	}
	historyCmd.PersistentFlags().IntVarP(&limit, "limit", "n", 20, "Maximum number of rows")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "List recent reconciliation passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID,
						run.Trigger,
						formatTimestamp(run.StartedAt),
						formatDuration(run),
						strconv.Itoa(run.Moved),
						strconv.Itoa(run.Failures),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Run", "Trigger", "Started", "Took", "Placed", "Failures"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "placements",
		Short: "List recently placed episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				placements, err := store.RecentPlacements(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(placements) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No placements recorded")
					return nil
				}
				rows := make([][]string, 0, len(placements))
				for _, p := range placements {
					rows = append(rows, []string{
						formatTimestamp(p.PlacedAt),
						p.Show,
						fmt.Sprintf("S%02dE%02d", p.Season, p.Episode),
						p.DestPath,
						yesNo(p.Renamed),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Placed", "Show", "Episode", "Destination", "Renamed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	})

	return historyCmd
}

func withHistory(ctx *commandContext, cmd *cobra.Command, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.HistoryPath()); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(cmd.OutOrStdout(), "No history database at %s yet\n", cfg.HistoryPath())
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"showsync/internal/daemonrun"
	"showsync/internal/filestore"
	"showsync/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify configuration, credentials and task sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data directory: %s\n", cfg.DataDir)
			if !ctx.exists {
				fmt.Fprintf(out, "Config file %s not found; defaults in use\n", cfg.ConfigPath())
			}

			var store filestore.Store
			if s, storeErr := daemonrun.NewStore(cfg); storeErr != nil {
				fmt.Fprintf(out, "File store unavailable: %v\n", storeErr)
			} else {
				store = s
			}

			results := preflight.RunAll(cmd.Context(), cfg, store)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if store == nil || preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

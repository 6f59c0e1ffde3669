package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"showsync/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand(ctx))

	return configCmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Create sample config.toml and tasks.toml in the data directory",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateSample(ctx.dataDir())
			if err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", path)
			fmt.Fprintln(out, "Set tmdb.api_key (or export TMDB_API_KEY), the store settings and at least one task before running showsync.")
			return nil
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and task files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", cfg.ConfigPath())
			if !ctx.exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Store: %s\n", describeStore(cfg))
			fmt.Fprintf(out, "Tasks: %d\n", len(cfg.Tasks))
			for _, task := range cfg.Tasks {
				fmt.Fprintf(out, "  %s -> %s\n", task.SourceDir, task.DestDir)
			}
			fmt.Fprintf(out, "Push channel: %s\n", orDash(cfg.Push.Channel))
			fmt.Fprintf(out, "Status API: %s\n", orDash(cfg.API.Bind))
			fmt.Fprintf(out, "Jellyfin refresh: %s\n", yesNo(cfg.Jellyfin.Enabled()))
			if err := cfg.RequireSync(); err != nil {
				fmt.Fprintf(out, "Not ready to sync: %v\n", err)
				return nil
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func describeStore(cfg *config.Config) string {
	if cfg.Store.Type == config.StoreLocal {
		return "local " + orDash(cfg.Store.Root)
	}
	return cfg.Store.Type + " " + orDash(cfg.Store.BaseURL)
}

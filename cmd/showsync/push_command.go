package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"showsync/internal/notifications"
)

func newPushCommand(ctx *commandContext) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send a message through the configured notification channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(message)
			if text == "" {
				return errors.New("--message is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			notifier, err := notifications.New(cfg)
			if err != nil {
				return err
			}
			if notifier.Channel() == "none" {
				fmt.Fprintln(cmd.OutOrStdout(), "No push channel configured; message not sent")
				return nil
			}
			if err := notifier.Send(cmd.Context(), text); err != nil {
				return fmt.Errorf("send via %s: %w", notifier.Channel(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Message sent via %s\n", notifier.Channel())
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text to send")
	return cmd
}

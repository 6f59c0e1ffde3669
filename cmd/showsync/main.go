package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"showsync/internal/daemon"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		os.Exit(1)
	case errors.Is(err, daemon.ErrAlreadyRunning):
		fmt.Fprintln(os.Stderr, "showsync:", err)
		fmt.Fprintln(os.Stderr, "use \"showsync sync\" to ask the running server for a pass")
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "showsync:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keywordlab/harvest/internal/cli"
)

func main() {
	// An interrupt cancels the command context; the runner finishes the
	// current step and stops between tasks.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

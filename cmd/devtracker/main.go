package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/devtracker/devtracker-cli/internal/cmd"
	"github.com/devtracker/devtracker-cli/internal/exitcode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		exitcode.Exit(exitcode.Success)
	}

	if ctx.Err() == context.Canceled {
		fmt.Fprintln(os.Stderr, "\nCancelled")
		exitcode.Exit(exitcode.Interrupted)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitcode.ExitWithError(err)
}

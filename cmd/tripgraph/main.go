// Command tripgraph serves and runs the travel search agent workflows.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wjs2063/tripgraph/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// Package main provides the entrypoint for gh-sponsor-relay.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/isometry/gh-sponsor-relay/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.New().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above
	}
}

// Package main is the entry point for the cloudram CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"terraform-provider-cloudram/internal/cli"

	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		if !cli.IsReported(err) {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

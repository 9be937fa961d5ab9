// Package main implements the nllfacts CLI.
// It aggregates borrow checker fact dumps into one metrics row per function.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/l3aro/go-nll-facts/cmd/nllfacts/commands"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`nllfacts version {{.Version}}
`)

	if err := commands.Execute(ctx); err != nil {
		commands.Report(os.Stderr, err)
		stop()
		os.Exit(commands.ExitCode(err))
	}
}

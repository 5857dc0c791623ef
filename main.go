package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dpshade/prompt-vault/internal/cli"
)

var version = "0.2.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.Version = version
	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		cancel()
		os.Exit(1)
	}
}

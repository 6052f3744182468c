package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"treesum/internal/cli"
)

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Exit-coded errors terminate inside Run; anything that reaches here is
	// a bad invocation.
	if err := cli.Root(version).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], environment{stdout: os.Stdout, stderr: os.Stderr}); err != nil {
		fmt.Fprintf(os.Stderr, "intake-cli: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"

	cmd "github.com/PRATIKK0709/PassRusted/cmd/passrusted"
)

func main() {
	// Purge any key material memguard still holds before exiting.
	defer memguard.Purge()

	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := cmd.Main(ctx, os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		memguard.Purge()
		os.Exit(1)
	}
}

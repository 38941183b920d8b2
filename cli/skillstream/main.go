package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	skillstreamcmder "github.com/papercomputeco/skillstream/cmd/skillstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := skillstreamcmder.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

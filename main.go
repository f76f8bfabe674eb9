package main

import (
	"context"
	"os"
	"os/signal"

	"helius-stake/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	cmd.Execute(ctx)
}

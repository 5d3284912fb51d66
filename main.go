package main

import (
	"context"
	"os"
	"os/signal"

	"qzone/cmd"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd.Execute(ctx, version)
}

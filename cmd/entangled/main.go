package main

import (
	"context"
	"os"

	"github.com/shakfu/entangled-rs/pkg/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:]))
}

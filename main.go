package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/icco/moviq/cmd"
)

var version = "dev"

func main() {
	root := cmd.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

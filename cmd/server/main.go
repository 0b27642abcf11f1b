// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "trustlens: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:           "trustlens",
		Usage:          "Score how trustworthy a piece of text is",
		Version:        fmt.Sprintf("%s (%s)", version, commit),
		DefaultCommand: serveCmd.Name,
		Commands: []*cli.Command{
			serveCmd,
			analyzeCmd,
		},
	}
}

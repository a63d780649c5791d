package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "sparkbench",
		Usage: "Benchmark and inspect spark reactive graphs",
		Commands: []*cli.Command{
			propagateCommand(),
			graphCommand(),
			dotCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/delaneyj/sparkgraph/spark"
	"github.com/delaneyj/sparkgraph/spark/inspect"
	"github.com/urfave/cli/v3"
)

const outKey = "out"

func dotCommand() *cli.Command {
	return &cli.Command{
		Name:  "dot",
		Usage: "Write the propagate graph as Graphviz DOT",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: widthKey, Usage: "Number of chains", Value: 2},
			&cli.IntFlag{Name: heightKey, Usage: "Computeds per chain", Value: 3},
			&cli.StringFlag{Name: outKey, Usage: "Output file, - for stdout", Value: "-"},
		},
		Action: writeDOT,
	}
}

func writeDOT(ctx context.Context, cmd *cli.Command) error {
	w, h := int(cmd.Int(widthKey)), int(cmd.Int(heightKey))
	if w <= 0 || h < 0 {
		return fmt.Errorf("invalid shape %d * %d", w, h)
	}

	rt := spark.NewRuntime()
	buildChains(rt, w, h)
	g := rt.Snapshot()

	var out io.Writer = os.Stdout
	if path := cmd.String(outKey); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	inspect.WriteDOT(out, g)
	log.Printf("%d nodes, %d edges, fingerprint %016x", len(g.Nodes), len(g.Edges), inspect.Fingerprint(g))
	return nil
}

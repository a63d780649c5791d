package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/sparkgraph/spark"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	widthKey      = "width"
	heightKey     = "height"
	itersKey      = "iters"
	cpuProfileKey = "cpuprofile"
)

var sweep = []int{1, 10, 100, 1_000}

type reader interface {
	Value() int
}

func propagateCommand() *cli.Command {
	return &cli.Command{
		Name:  "propagate",
		Usage: "Time signal writes through width chains of height computeds",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  widthKey,
				Usage: "Number of chains, 0 sweeps 1 to 1000",
			},
			&cli.IntFlag{
				Name:  heightKey,
				Usage: "Computeds per chain, 0 sweeps 1 to 1000",
			},
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Writes timed per shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  cpuProfileKey,
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: propagate,
	}
}

func propagate(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(cpuProfileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	ww, hh := sweep, sweep
	if w := int(cmd.Int(widthKey)); w > 0 {
		ww = []int{w}
	}
	if h := int(cmd.Int(heightKey)); h > 0 {
		hh = []int{h}
	}
	iters := int(cmd.Int(itersKey))
	if iters <= 0 {
		return fmt.Errorf("iters must be positive, got %d", iters)
	}

	log.Printf("warming up")

	tbl := table.NewWriter()
	tbl.SetTitle("Spark Signals")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "edges"})

	for _, w := range ww {
		for _, h := range hh {
			if err := ctx.Err(); err != nil {
				return err
			}

			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rt := spark.NewRuntime(spark.WithErrorHandler(func(err error) {
				log.Panic(err)
			}))
			src := buildChains(rt, w, h)

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Update(addOne)
				tach.AddTime(time.Since(start))
			}
			if err := rt.Verify(); err != nil {
				return fmt.Errorf("propagate %d * %d: %w", w, h, err)
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					rt.Stats().Edges,
				},
			})
		}
	}

	tbl.Render()
	return nil
}

func addOne(oldValue int) int {
	return oldValue + 1
}

// buildChains hangs w chains of h computeds off one signal, with an effect
// reading the tail of each chain.
func buildChains(rt *spark.Runtime, w, h int) *spark.WritableSignal[int] {
	src := spark.Signal(rt, 1, spark.Named("src"))
	for i := 0; i < w; i++ {
		var last reader = src
		for j := 0; j < h; j++ {
			prev := last
			last = spark.Derive(rt, func() int {
				return prev.Value() + 1
			}, spark.Named(fmt.Sprintf("c%d.%d", i, j)))
		}

		spark.Effect(rt, func() (spark.Cleanup, error) {
			last.Value()
			return nil, nil
		}, spark.Named(fmt.Sprintf("e%d", i)))
	}
	return src
}

package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/sparkgraph/spark"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	layersKey  = "layers"
	sourcesKey = "sources"
	staticKey  = "static"
	readKey    = "read"
	repeatsKey = "repeats"
	seedKey    = "seed"
)

type graphConfig struct {
	name           string
	width          int     // nodes per layer
	totalLayers    int     // layers including the signal row
	staticFraction float64 // fraction of nodes that always read all their sources
	nSources       int     // sources read by each node
	readFraction   float64 // fraction of leaves read after each write
	iterations     int
}

var graphPresets = []graphConfig{
	{name: "simple component", width: 10, totalLayers: 5, staticFraction: 1, nSources: 2, readFraction: 0.2, iterations: 600_000},
	{name: "dynamic component", width: 10, totalLayers: 10, staticFraction: 0.75, nSources: 6, readFraction: 0.2, iterations: 15_000},
	{name: "large web app", width: 1000, totalLayers: 12, staticFraction: 0.95, nSources: 4, readFraction: 1, iterations: 7_000},
	{name: "wide dense", width: 1000, totalLayers: 5, staticFraction: 1, nSources: 25, readFraction: 1, iterations: 3_000},
	{name: "deep", width: 5, totalLayers: 500, staticFraction: 1, nSources: 3, readFraction: 1, iterations: 500},
	{name: "very dynamic", width: 100, totalLayers: 15, staticFraction: 0.5, nSources: 6, readFraction: 1, iterations: 2_000},
}

func graphCommand() *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: "Run layered graph benchmarks; without --width runs the preset suite",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: widthKey, Usage: "Nodes per layer"},
			&cli.IntFlag{Name: layersKey, Usage: "Number of layers", Value: 5},
			&cli.IntFlag{Name: sourcesKey, Usage: "Sources read by each node", Value: 2},
			&cli.FloatFlag{Name: staticKey, Usage: "Fraction of static nodes", Value: 1},
			&cli.FloatFlag{Name: readKey, Usage: "Fraction of leaves read per iteration", Value: 1},
			&cli.IntFlag{Name: itersKey, Usage: "Writes per run", Value: 1_000},
			&cli.IntFlag{Name: repeatsKey, Usage: "Runs per config, best is reported", Value: 5},
			&cli.IntFlag{Name: seedKey, Usage: "Seed for graph shape and leaf selection"},
		},
		Action: runGraphs,
	}
}

func runGraphs(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting graph benchmark, please wait...")
	defer log.Print("Finished graph benchmark")

	cfgs := graphPresets
	if w := int(cmd.Int(widthKey)); w > 0 {
		cfgs = []graphConfig{{
			name:           "custom",
			width:          w,
			totalLayers:    int(cmd.Int(layersKey)),
			staticFraction: cmd.Float(staticKey),
			nSources:       int(cmd.Int(sourcesKey)),
			readFraction:   cmd.Float(readKey),
			iterations:     int(cmd.Int(itersKey)),
		}}
	}
	repeats := int(cmd.Int(repeatsKey))
	seed := cmd.Int(seedKey)

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{
		"size", "nSources", "read%", "static%",
		"nTimes", "test", "time", "recomputes", "updateRate", "title",
	})

	for _, cfg := range cfgs {
		if err := cfg.validate(); err != nil {
			return fmt.Errorf("%s: %w", cfg.name, err)
		}
		log.Printf("Running '%s' config", cfg.name)

		var (
			best  = time.Duration(math.MaxInt64)
			count int64
		)
		// first run warms up
		for i := 0; i <= repeats; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			rt := spark.NewRuntime(spark.WithErrorHandler(func(err error) {
				log.Panic(err)
			}))
			g := makeGraph(rt, cfg, seed)

			start := time.Now()
			g.run(rt, cfg, seed)
			duration := time.Since(start)

			if err := rt.Verify(); err != nil {
				return fmt.Errorf("%s: %w", cfg.name, err)
			}
			if i > 0 && duration < best {
				best = duration
				count = rt.Stats().Recomputes
			}
		}

		updateRate := float64(count) / (float64(best) / float64(time.Millisecond))
		tbl.Append([]string{
			fmt.Sprintf("%dx%d", cfg.width, cfg.totalLayers),
			fmt.Sprint(cfg.nSources),
			fmt.Sprint(cfg.readFraction),
			fmt.Sprint(cfg.staticFraction),
			humanize.Comma(int64(cfg.iterations)),
			cfg.name,
			fmt.Sprint(best),
			humanize.Comma(count),
			humanize.Comma(int64(updateRate)),
			cfg.title(),
		})
	}
	tbl.Render()
	return nil
}

func (cfg graphConfig) validate() error {
	switch {
	case cfg.width <= 0:
		return fmt.Errorf("width must be positive, got %d", cfg.width)
	case cfg.totalLayers < 2:
		return fmt.Errorf("need at least 2 layers, got %d", cfg.totalLayers)
	case cfg.nSources < 2:
		return fmt.Errorf("need at least 2 sources per node, got %d", cfg.nSources)
	case cfg.iterations <= 0:
		return fmt.Errorf("iterations must be positive, got %d", cfg.iterations)
	}
	return nil
}

func (cfg graphConfig) title() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%dx%d %d sources", cfg.width, cfg.totalLayers, cfg.nSources)
	if cfg.staticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if cfg.readFraction < 1 {
		fmt.Fprintf(&sb, " read %0.2f%%", 100*cfg.readFraction)
	}
	return sb.String()
}

type layeredGraph struct {
	sources []*spark.WritableSignal[int]
	layers  [][]*spark.Computed[int]
}

func makeGraph(rt *spark.Runtime, cfg graphConfig, seed int64) *layeredGraph {
	random := rand.New(rand.NewSource(seed))

	g := &layeredGraph{
		sources: make([]*spark.WritableSignal[int], cfg.width),
		layers:  make([][]*spark.Computed[int], cfg.totalLayers-1),
	}
	prev := make([]reader, cfg.width)
	for i := range g.sources {
		g.sources[i] = spark.Signal(rt, i)
		prev[i] = g.sources[i]
	}

	for l := range g.layers {
		row := make([]*spark.Computed[int], cfg.width)
		for myDex := range row {
			mySources := make([]reader, 0, cfg.nSources)
			for sourceDex := 0; sourceDex < cfg.nSources; sourceDex++ {
				mySources = append(mySources, prev[(myDex+sourceDex)%len(prev)])
			}

			if random.Float64() < cfg.staticFraction {
				row[myDex] = spark.Derive(rt, func() int {
					sum := 0
					for _, source := range mySources {
						sum += source.Value()
					}
					return sum
				})
				continue
			}

			// dynamic nodes skip one source depending on the first
			first, tail := mySources[0], mySources[1:]
			row[myDex] = spark.Derive(rt, func() int {
				sum := first.Value()
				shouldDrop := sum&0x1 > 0
				dropDex := sum % len(tail)
				for i, source := range tail {
					if shouldDrop && i == dropDex {
						continue
					}
					sum += source.Value()
				}
				return sum
			})
		}

		g.layers[l] = row
		prev = prev[:0]
		for _, c := range row {
			prev = append(prev, c)
		}
	}
	return g
}

// run writes one source per iteration and reads a fixed subset of leaves.
// It returns the sum of the leaves read at the end.
func (g *layeredGraph) run(rt *spark.Runtime, cfg graphConfig, seed int64) int {
	random := rand.New(rand.NewSource(seed))
	leaves := g.layers[len(g.layers)-1]
	skipCount := int(math.Round(float64(len(leaves)) * (1 - cfg.readFraction)))
	readLeaves := removeElems(leaves, skipCount, random)

	for i := 0; i < cfg.iterations; i++ {
		rt.Batch(func() {
			sourceDex := i % len(g.sources)
			g.sources[sourceDex].SetValue(i + sourceDex)
		})

		for _, leaf := range readLeaves {
			leaf.Value()
		}
	}

	sum := 0
	for _, leaf := range readLeaves {
		sum += leaf.Value()
	}
	return sum
}

func removeElems[T any](src []T, rmCount int, random *rand.Rand) []T {
	out := make([]T, len(src))
	copy(out, src)
	for i := 0; i < rmCount; i++ {
		rmDex := random.Intn(len(out))
		out[rmDex] = out[len(out)-1]
		out = out[:len(out)-1]
	}
	return out
}

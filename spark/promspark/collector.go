// Package promspark exports a spark.Runtime's counters to Prometheus.
package promspark

import (
	"github.com/delaneyj/sparkgraph/spark"
	"github.com/prometheus/client_golang/prometheus"
)

type config struct {
	namespace   string
	subsystem   string
	constLabels prometheus.Labels
}

type Option func(*config)

// WithNamespace sets the metric namespace (default "spark").
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *config) {
		c.subsystem = subsystem
	}
}

// WithConstLabels attaches labels to every metric, e.g. to tell runtimes
// apart when several are registered.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *config) {
		c.constLabels = labels
	}
}

// Collector reads Runtime.Stats on every scrape. It only touches atomic
// counters, so it may be scraped while the runtime's goroutine is busy.
type Collector struct {
	rt *spark.Runtime

	writes      *prometheus.Desc
	recomputes  *prometheus.Desc
	effectRuns  *prometheus.Desc
	errors      *prometheus.Desc
	suspensions *prometheus.Desc
	edges       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(rt *spark.Runtime, opts ...Option) *Collector {
	cfg := config{namespace: "spark"}
	for _, opt := range opts {
		opt(&cfg)
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(cfg.namespace, cfg.subsystem, name),
			help, nil, cfg.constLabels,
		)
	}

	return &Collector{
		rt:          rt,
		writes:      desc("writes_total", "Signal writes that changed a value."),
		recomputes:  desc("recomputes_total", "Computed getter executions."),
		effectRuns:  desc("effect_runs_total", "Effect body executions."),
		errors:      desc("effect_errors_total", "Errors and panics reported from effects."),
		suspensions: desc("suspensions_total", "Suspense values handed to the suspense handler."),
		edges:       desc("edges", "Live dependency edges."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.writes
	ch <- c.recomputes
	ch <- c.effectRuns
	ch <- c.errors
	ch <- c.suspensions
	ch <- c.edges
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.rt.Stats()
	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.writes, s.Writes)
	counter(c.recomputes, s.Recomputes)
	counter(c.effectRuns, s.EffectRuns)
	counter(c.errors, s.Errors)
	counter(c.suspensions, s.Suspensions)
	ch <- prometheus.MustNewConstMetric(c.edges, prometheus.GaugeValue, float64(s.Edges))
}

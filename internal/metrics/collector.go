// Package metrics exports register and run measurements in the Prometheus
// text format.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

const namespace = "superposition"

// StatsCollector exposes [superposition.Stats] of the tracked registers.
// Counters keep growing across registers: when a new register is tracked the
// final stats of the previous one are folded into the totals.
type StatsCollector struct {
	mu     sync.Mutex
	base   superposition.Stats
	source func() superposition.Stats

	publishes     *prometheus.Desc
	replays       *prometheus.Desc
	drainSpins    *prometheus.Desc
	drainBackoffs *prometheus.Desc
	reads         *prometheus.Desc
	readRetries   *prometheus.Desc
	peakReaders   *prometheus.Desc
}

// NewStatsCollector returns a collector with nothing tracked.
func NewStatsCollector() *StatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "register", name), help, nil, nil)
	}

	return &StatsCollector{
		publishes:     desc("publishes_total", "Completed index flips."),
		replays:       desc("replays_total", "Increments replayed onto a lagging back slot."),
		drainSpins:    desc("drain_spins_total", "Processor yields while draining the back slot."),
		drainBackoffs: desc("drain_backoffs_total", "Sleeps while draining the back slot."),
		reads:         desc("reads_total", "Completed read queries."),
		readRetries:   desc("read_retries_total", "Readers that entered a demoted slot and retried."),
		peakReaders:   desc("peak_readers", "Largest reader tally seen on one slot."),
	}
}

// Track makes stats the live source.
func (c *StatsCollector) Track(stats func() superposition.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source != nil {
		c.base = c.base.Add(c.source())
	}

	c.source = stats
}

// Snapshot returns the totals.
func (c *StatsCollector) Snapshot() superposition.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		return c.base
	}

	return c.base.Add(c.source())
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.publishes
	ch <- c.replays
	ch <- c.drainSpins
	ch <- c.drainBackoffs
	ch <- c.reads
	ch <- c.readRetries
	ch <- c.peakReaders
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.Snapshot()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	counter(c.publishes, s.Publishes)
	counter(c.replays, s.Replays)
	counter(c.drainSpins, s.DrainSpins)
	counter(c.drainBackoffs, s.DrainBackoffs)
	counter(c.reads, s.Reads)
	counter(c.readRetries, s.ReadRetries)
	ch <- prometheus.MustNewConstMetric(c.peakReaders, prometheus.GaugeValue, float64(s.PeakReaders))
}

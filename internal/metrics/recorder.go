package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

// Recorder owns a private registry with run metrics and a [StatsCollector].
type Recorder struct {
	registry *prometheus.Registry
	stats    *StatsCollector

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cpu      *prometheus.CounterVec
	blocks   *prometheus.CounterVec
	polls    *prometheus.CounterVec
}

// NewRecorder builds a recorder and registers its collectors.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stats:    NewStatsCollector(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bench",
				Name:      "runs_total",
				Help:      "Completed benchmark runs.",
			},
			[]string{"mode"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "bench",
				Name:      "run_duration_seconds",
				Help:      "Wall time of one run.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
			},
			[]string{"mode"},
		),
		cpu: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bench",
				Name:      "cpu_seconds_total",
				Help:      "Process CPU time spent in runs.",
			},
			[]string{"mode", "kind"},
		),
		blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bench",
				Name:      "blocks_total",
				Help:      "Blocks appended by runs.",
			},
			[]string{"mode"},
		),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bench",
				Name:      "reader_polls_total",
				Help:      "Reader queries issued by runs.",
			},
			[]string{"mode"},
		),
	}

	for _, c := range []prometheus.Collector{r.stats, r.runs, r.duration, r.cpu, r.blocks, r.polls} {
		err := r.registry.Register(c)
		if err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return r, nil
}

// Registry returns the registry holding all recorder metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Stats returns the register stats collector.
func (r *Recorder) Stats() *StatsCollector {
	return r.stats
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(res bench.Result) {
	mode := string(res.Mode)

	r.runs.WithLabelValues(mode).Inc()
	r.duration.WithLabelValues(mode).Observe(res.Elapsed.Seconds())
	r.cpu.WithLabelValues(mode, "user").Add(res.CPU.User.Seconds())
	r.cpu.WithLabelValues(mode, "system").Add(res.CPU.System.Seconds())
	r.blocks.WithLabelValues(mode).Add(float64(res.Length))
	r.polls.WithLabelValues(mode).Add(float64(res.Polls))
}

// Hooks returns harness hooks feeding the recorder.
func (r *Recorder) Hooks() bench.Hooks {
	return bench.Hooks{
		RegisterStarted: func(_ bench.Mode, stats func() superposition.Stats) { r.stats.Track(stats) },
		RunFinished:     r.ObserveRun,
	}
}

// WriteTextfile writes all metrics to path in the text exposition format,
// for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, r.registry)
	if err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}

	return nil
}

package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/internal/metrics"
	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

func Test_StatsCollector_Folds_Previous_Register_When_New_One_Tracked(t *testing.T) {
	t.Parallel()

	c := metrics.NewStatsCollector()

	first := superposition.Stats{Publishes: 10, Replays: 9, Reads: 4, PeakReaders: 3}
	second := superposition.Stats{Publishes: 5, Replays: 4, Reads: 1, PeakReaders: 1}

	c.Track(func() superposition.Stats { return first })
	c.Track(func() superposition.Stats { return second })

	expected := `
# HELP superposition_register_publishes_total Completed index flips.
# TYPE superposition_register_publishes_total counter
superposition_register_publishes_total 15
# HELP superposition_register_replays_total Increments replayed onto a lagging back slot.
# TYPE superposition_register_replays_total counter
superposition_register_replays_total 13
# HELP superposition_register_reads_total Completed read queries.
# TYPE superposition_register_reads_total counter
superposition_register_reads_total 5
# HELP superposition_register_peak_readers Largest reader tally seen on one slot.
# TYPE superposition_register_peak_readers gauge
superposition_register_peak_readers 3
`

	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"superposition_register_publishes_total",
		"superposition_register_replays_total",
		"superposition_register_reads_total",
		"superposition_register_peak_readers",
	)
	require.NoError(t, err)

	if got := testutil.CollectAndCount(c); got != 7 {
		t.Fatalf("CollectAndCount=%d, want=7", got)
	}
}

func Test_Recorder_Writes_Textfile_With_Run_Metrics_When_Runs_Observed(t *testing.T) {
	t.Parallel()

	rec, err := metrics.NewRecorder()
	require.NoError(t, err)

	hooks := rec.Hooks()
	hooks.RegisterStarted(bench.ModeRegister, func() superposition.Stats { return superposition.Stats{Publishes: 100} })
	hooks.RunFinished(bench.Result{Mode: bench.ModeRegister, Length: 100, Elapsed: 20 * time.Millisecond, Polls: 30})
	hooks.RunFinished(bench.Result{Mode: bench.ModeDirect, Length: 100, Elapsed: 30 * time.Millisecond})

	expected := `
# HELP superposition_bench_runs_total Completed benchmark runs.
# TYPE superposition_bench_runs_total counter
superposition_bench_runs_total{mode="direct"} 1
superposition_bench_runs_total{mode="register"} 1
# HELP superposition_bench_reader_polls_total Reader queries issued by runs.
# TYPE superposition_bench_reader_polls_total counter
superposition_bench_reader_polls_total{mode="direct"} 0
superposition_bench_reader_polls_total{mode="register"} 30
`

	err = testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"superposition_bench_runs_total",
		"superposition_bench_reader_polls_total",
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "superposition.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	for _, want := range []string{
		"superposition_register_publishes_total 100",
		`superposition_bench_blocks_total{mode="direct"} 100`,
		`superposition_bench_run_duration_seconds_count{mode="register"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("textfile missing %q:\n%s", want, data)
		}
	}
}

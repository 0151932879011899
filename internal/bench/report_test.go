package bench_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

func sampleReport() *bench.Report {
	r := bench.NewReport(bench.DefaultConfig())
	r.Results = []bench.Result{
		{Mode: bench.ModeDirect, Elapsed: 10 * time.Millisecond, CPU: bench.CPUTime{User: 8 * time.Millisecond}},
		{Mode: bench.ModeRegister, Elapsed: 6 * time.Millisecond, Polls: 5, Stats: superposition.Stats{Publishes: 100, PeakReaders: 2}},
		{Mode: bench.ModeDirect, Elapsed: 20 * time.Millisecond, CPU: bench.CPUTime{User: 12 * time.Millisecond}},
		{Mode: bench.ModeRegister, Elapsed: 4 * time.Millisecond, Polls: 7, Stats: superposition.Stats{Publishes: 100, PeakReaders: 1}},
	}

	return r
}

func Test_Report_Summaries_Aggregate_Per_Mode_In_First_Seen_Order(t *testing.T) {
	t.Parallel()

	got := sampleReport().Summaries()

	want := []bench.Summary{
		{
			Mode: bench.ModeDirect, Runs: 2,
			Mean: 15 * time.Millisecond, Min: 10 * time.Millisecond, Max: 20 * time.Millisecond,
			CPU: bench.CPUTime{User: 10 * time.Millisecond},
		},
		{
			Mode: bench.ModeRegister, Runs: 2,
			Mean: 5 * time.Millisecond, Min: 4 * time.Millisecond, Max: 6 * time.Millisecond,
			Polls: 12,
			Stats: superposition.Stats{Publishes: 200, PeakReaders: 2},
		},
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("summaries (-want +got):\n%s", diff)
	}
}

func Test_Report_Markdown_Renders_Table_Row_Per_Mode(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	md := r.Markdown()

	for _, want := range []string{
		"- run id: " + r.RunID.String(),
		"| direct | 2 | 15.00 | 10.00 | 20.00 | 10.00 | 0.00 | 1.00x |",
		"| register | 2 | 5.00 | 4.00 | 6.00 | 0.00 | 0.00 | 0.33x |",
		"- publishes: 200; replays: 0",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func Test_WriteReport_Writes_Markdown_When_Path_Given(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.md")
	r := sampleReport()

	require.NoError(t, bench.WriteReport(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	if diff := cmp.Diff(r.Markdown(), string(data)); diff != "" {
		t.Fatalf("file content (-want +got):\n%s", diff)
	}
}

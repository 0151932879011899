package bench

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

// Report collects the results of one invocation.
type Report struct {
	RunID   uuid.UUID
	Started time.Time
	Config  Config
	Results []Result
	// Stress is set by stress invocations.
	Stress *StressResult
}

// NewReport starts a report with a fresh run ID.
func NewReport(cfg Config) *Report {
	return &Report{
		RunID:   uuid.New(),
		Started: time.Now().UTC(),
		Config:  cfg,
	}
}

// Summary aggregates the runs of one mode.
type Summary struct {
	Mode Mode
	Runs int
	Mean time.Duration
	Min  time.Duration
	Max  time.Duration
	// CPU is the mean processor time per run.
	CPU   CPUTime
	Polls uint64
	// Stats sums register activity over runs.
	Stats superposition.Stats
}

// Summaries returns one summary per mode, in order of first appearance.
func (r *Report) Summaries() []Summary {
	var order []Mode

	byMode := map[Mode]*Summary{}

	for _, res := range r.Results {
		s, ok := byMode[res.Mode]
		if !ok {
			s = &Summary{Mode: res.Mode, Min: res.Elapsed, Max: res.Elapsed}
			byMode[res.Mode] = s
			order = append(order, res.Mode)
		}

		s.Runs++
		s.Mean += res.Elapsed
		s.Min = min(s.Min, res.Elapsed)
		s.Max = max(s.Max, res.Elapsed)
		s.CPU.User += res.CPU.User
		s.CPU.System += res.CPU.System
		s.Polls += res.Polls
		s.Stats = s.Stats.Add(res.Stats)
	}

	out := make([]Summary, 0, len(order))

	for _, m := range order {
		s := byMode[m]
		n := time.Duration(s.Runs)
		s.Mean /= n
		s.CPU.User /= n
		s.CPU.System /= n
		out = append(out, *s)
	}

	return out
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var sb strings.Builder

	cfg := r.Config

	sb.WriteString(fmt.Sprintf("## Run %s\n\n", r.Started.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("- run id: %s\n", r.RunID))
	sb.WriteString(fmt.Sprintf("- %s %s/%s, GOMAXPROCS=%d\n", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.GOMAXPROCS(0)))
	sb.WriteString(fmt.Sprintf("- scheme: %s; keys: %d\n", cfg.Scheme, cfg.Keys))

	if r.Stress != nil {
		writeStress(&sb, cfg, r.Stress)

		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("- block size: %d; chain length: %d; readers: %d; repeat: %d\n\n",
		cfg.BlockSize, cfg.ChainLength, cfg.Readers, cfg.Repeat))

	summaries := r.Summaries()
	if len(summaries) == 0 {
		sb.WriteString("no runs\n")

		return sb.String()
	}

	base := summaries[0].Mean

	sb.WriteString("| Mode | Runs | Mean [ms] | Min [ms] | Max [ms] | User [ms] | Sys [ms] | Rel |\n")
	sb.WriteString("|:---|---:|---:|---:|---:|---:|---:|---:|\n")

	for _, s := range summaries {
		rel := 0.0
		if base > 0 {
			rel = float64(s.Mean) / float64(base)
		}

		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2fx |\n",
			s.Mode, s.Runs, ms(s.Mean), ms(s.Min), ms(s.Max), ms(s.CPU.User), ms(s.CPU.System), rel))
	}

	sb.WriteString("\n")

	for _, s := range summaries {
		if s.Mode != ModeRegister {
			continue
		}

		sb.WriteString("### Register\n\n")
		sb.WriteString(fmt.Sprintf("- publishes: %d; replays: %d\n", s.Stats.Publishes, s.Stats.Replays))
		sb.WriteString(fmt.Sprintf("- reads: %d; read retries: %d; reader polls: %d; peak readers: %d\n",
			s.Stats.Reads, s.Stats.ReadRetries, s.Polls, s.Stats.PeakReaders))
		sb.WriteString(fmt.Sprintf("- drain spins: %d; drain backoffs: %d\n\n", s.Stats.DrainSpins, s.Stats.DrainBackoffs))
	}

	return sb.String()
}

func writeStress(sb *strings.Builder, cfg Config, s *StressResult) {
	sb.WriteString(fmt.Sprintf("- stress: %s; block size: %d; readers per wave: %d\n\n",
		cfg.StressDuration, cfg.BlockSize, cfg.StressReaders))

	sb.WriteString("| Elapsed [ms] | Blocks | Readers spawned | Polls | Read retries | Drain spins | Drain backoffs | Overlaps |\n")
	sb.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	sb.WriteString(fmt.Sprintf("| %.2f | %d | %d | %d | %d | %d | %d | %d |\n\n",
		ms(s.Elapsed), s.Length, s.Spawned, s.Polls, s.Stats.ReadRetries, s.Stats.DrainSpins, s.Stats.DrainBackoffs, s.Overlaps))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// WriteReport atomically writes the markdown rendering of r to path.
func WriteReport(path string, r *Report) error {
	err := atomic.WriteFile(path, strings.NewReader(r.Markdown()))
	if err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

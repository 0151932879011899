package cli

import (
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

// Flag groups accepted by harness commands.
const (
	flagsCommon = 1 << iota
	flagsRun
	flagsStress

	flagsAll = flagsCommon | flagsRun | flagsStress
)

// benchFlags binds harness settings to a FlagSet. Only flags the user
// actually set become [bench.Overrides], so config files keep their say for
// everything else.
type benchFlags struct {
	fs *flag.FlagSet

	blockSize      int
	chainLength    int
	keys           int
	readers        int
	repeat         int
	mode           string
	scheme         string
	pollInterval   time.Duration
	drainTimeout   time.Duration
	stressDuration time.Duration
	stressReaders  int
	finalVerify    bool
	seed           uint64
	report         string
	metricsFile    string
}

func newBenchFlags(fs *flag.FlagSet, groups int) *benchFlags {
	def := bench.DefaultConfig()
	f := &benchFlags{fs: fs}

	if groups&flagsCommon != 0 {
		fs.IntVar(&f.blockSize, "block-size", def.BlockSize, "Transactions per block")
		fs.IntVar(&f.keys, "keys", def.Keys, "Number of signing keys")
		fs.StringVar(&f.scheme, "scheme", def.Scheme.String(), "Signature scheme: ed25519 or rsa")
		fs.DurationVar(&f.drainTimeout, "drain-timeout", 0, "Give up on a stuck reader after this long (0 waits forever)")
		fs.Uint64Var(&f.seed, "seed", 0, "Seed for transaction picks (0 picks one)")
		fs.StringVar(&f.report, "report", "", "Write the markdown report to this file")
		fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	}

	if groups&flagsRun != 0 {
		fs.IntVar(&f.chainLength, "chain-length", def.ChainLength, "Blocks per run")
		fs.IntVar(&f.readers, "readers", def.Readers, "Concurrent verifying readers")
		fs.IntVar(&f.repeat, "repeat", def.Repeat, "Repetitions per mode")
		fs.StringVar(&f.mode, "mode", string(def.Mode), "Which runners: all, direct or register")
		fs.DurationVar(&f.pollInterval, "poll-interval", 0, "Reader sleep between polls (0 only yields)")
		fs.BoolVar(&f.finalVerify, "final-verify", false, "Re-verify the whole chain after each run")
	}

	if groups&flagsStress != 0 {
		fs.DurationVar(&f.stressDuration, "stress-duration", def.StressDuration.Duration, "How long the stress run lasts")
		fs.IntVar(&f.stressReaders, "stress-readers", def.StressReaders, "Concurrent short-lived reader slots")
	}

	return f
}

func (f *benchFlags) changed(name string) bool {
	fl := f.fs.Lookup(name)

	return fl != nil && fl.Changed
}

func (f *benchFlags) overrides() (bench.Overrides, error) {
	var o bench.Overrides

	if f.changed("block-size") {
		o.BlockSize = &f.blockSize
	}

	if f.changed("chain-length") {
		o.ChainLength = &f.chainLength
	}

	if f.changed("keys") {
		o.Keys = &f.keys
	}

	if f.changed("readers") {
		o.Readers = &f.readers
	}

	if f.changed("repeat") {
		o.Repeat = &f.repeat
	}

	if f.changed("mode") {
		mode, err := bench.ParseMode(f.mode)
		if err != nil {
			return bench.Overrides{}, fmt.Errorf("--mode: %w", err)
		}

		o.Mode = &mode
	}

	if f.changed("scheme") {
		scheme, err := ledger.ParseScheme(f.scheme)
		if err != nil {
			return bench.Overrides{}, fmt.Errorf("--scheme: %w", err)
		}

		o.Scheme = &scheme
	}

	if f.changed("poll-interval") {
		o.PollInterval = &f.pollInterval
	}

	if f.changed("drain-timeout") {
		o.DrainTimeout = &f.drainTimeout
	}

	if f.changed("stress-duration") {
		o.StressDuration = &f.stressDuration
	}

	if f.changed("stress-readers") {
		o.StressReaders = &f.stressReaders
	}

	if f.changed("final-verify") {
		o.FinalVerify = &f.finalVerify
	}

	if f.changed("seed") {
		o.Seed = &f.seed
	}

	if f.changed("report") {
		o.Report = &f.report
	}

	if f.changed("metrics-file") {
		o.MetricsFile = &f.metricsFile
	}

	return o, nil
}

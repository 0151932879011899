package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

// Runner builds one ledger of Params.ChainLength blocks.
type Runner interface {
	Mode() Mode
	Run(ctx context.Context, p Params) (Result, error)
}

// NewRunner returns the runner of a single mode.
func NewRunner(m Mode) (Runner, error) {
	switch m {
	case ModeDirect:
		return DirectRunner{}, nil
	case ModeRegister:
		return RegisterRunner{}, nil
	default:
		return nil, fmt.Errorf("%w: no single runner for %q", ErrUnknownMode, string(m))
	}
}

// Params are the inputs of one run.
type Params struct {
	BlockSize   int
	ChainLength int
	Readers     int

	// PollInterval is the pause between reader polls. Zero yields the
	// processor instead of sleeping.
	PollInterval time.Duration
	DrainTimeout time.Duration

	// FinalVerify verifies the whole ledger once the run is done.
	FinalVerify bool

	Stream *TxStream
	Logger zerolog.Logger
	Hooks  Hooks
}

// Hooks observe runs as they happen. Nil fields are skipped.
type Hooks struct {
	// RegisterStarted receives the stats source of every register a run
	// builds. It is called before any role starts.
	RegisterStarted func(mode Mode, stats func() superposition.Stats)
	// RunFinished receives every successful result.
	RunFinished func(Result)
}

func (h Hooks) registerStarted(m Mode, stats func() superposition.Stats) {
	if h.RegisterStarted != nil {
		h.RegisterStarted(m, stats)
	}
}

func (h Hooks) runFinished(r Result) {
	if h.RunFinished != nil {
		h.RunFinished(r)
	}
}

// Result describes one run.
type Result struct {
	Mode         Mode
	Run          int
	Length       int
	Transactions int
	Elapsed      time.Duration
	CPU          CPUTime
	// Polls counts reader queries. Zero for direct runs.
	Polls uint64
	// Stats is the register activity. Zero for direct runs.
	Stats superposition.Stats
}

// waitPoll pauses a reader between polls.
func waitPoll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(interval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

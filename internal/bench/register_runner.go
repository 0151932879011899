package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

// RegisterRunner signs and appends blocks on a mover goroutine while reader
// goroutines verify the published ledger incrementally.
type RegisterRunner struct{}

// Mode returns [ModeRegister].
func (RegisterRunner) Mode() Mode { return ModeRegister }

// Run starts one mover and p.Readers readers over a fresh register. It
// returns once the mover has published ChainLength blocks and every reader
// has verified all of them, or on the first error of any role.
func (RegisterRunner) Run(ctx context.Context, p Params) (Result, error) {
	reg, err := superposition.New(ledger.Factory, superposition.WithDrainTimeout(p.DrainTimeout))
	if err != nil {
		return Result{}, err
	}

	p.Hooks.registerStarted(ModeRegister, reg.Stats)

	var polls atomic.Uint64

	cpuStart := sampleCPU()
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runMover(gctx, reg.Mover(), p)
	})

	for i := range p.Readers {
		g.Go(func() error {
			err := runVerifier(gctx, reg.Reader(), p, &polls)
			if err != nil {
				return fmt.Errorf("reader %d: %w", i, err)
			}

			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return Result{}, err
	}

	elapsed := time.Since(start)
	cpu := sampleCPU().Sub(cpuStart)

	reader := reg.Reader()

	type shape struct{ blocks, txs int }

	got, err := superposition.ReadValue(reader, func(l *ledger.Ledger) (shape, error) {
		if p.FinalVerify {
			verifyErr := l.Verify(0)
			if verifyErr != nil {
				return shape{}, verifyErr
			}
		}

		return shape{l.Len(), l.Transactions()}, nil
	})
	if err != nil {
		return Result{}, err
	}

	if p.FinalVerify {
		p.Logger.Debug().Int("length", got.blocks).Msg("final verification passed")
	}

	return Result{
		Mode:         ModeRegister,
		Length:       got.blocks,
		Transactions: got.txs,
		Elapsed:      elapsed,
		CPU:          cpu,
		Polls:        polls.Load(),
		Stats:        reg.Stats(),
	}, nil
}

// runMover publishes blocks until the chain is complete.
func runMover(ctx context.Context, mover *superposition.Mover[*ledger.Ledger], p Params) error {
	b := ledger.NewBuilder(ledger.Digest{})

	for n := 0; n < p.ChainLength; {
		err := ctx.Err()
		if err != nil {
			return fmt.Errorf("%w: %d of %d blocks: %w", ErrIncomplete, n, p.ChainLength, err)
		}

		tip, err := publishNext(ctx, mover, b, p.Stream, p.BlockSize)
		if err != nil {
			return err
		}

		n = tip.Len
	}

	p.Logger.Debug().Str("role", "mover").Int("length", p.ChainLength).Msg("chain complete")

	return nil
}

// publishNext stages the tip, seals the next block of size transactions from
// it and publishes the block. Returns the tip after the block.
//
// On a publish error the builder is already past the block that was not
// appended and must be restarted from the ledger tip.
func publishNext(ctx context.Context, mover *superposition.Mover[*ledger.Ledger], b *ledger.Builder, stream *TxStream, size int) (ledger.Tip, error) {
	tip, err := superposition.StageValue(mover, func(l *ledger.Ledger) (ledger.Tip, error) {
		return l.Tip(), nil
	})
	if err != nil {
		return ledger.Tip{}, err
	}

	err = stream.fill(b, size)
	if err != nil {
		return ledger.Tip{}, err
	}

	block, err := b.Seal(tip)
	if err != nil {
		return ledger.Tip{}, err
	}

	err = mover.Publish(ctx, func(l *ledger.Ledger) error { return l.Append(block) })
	if err != nil {
		return ledger.Tip{}, err
	}

	return ledger.TipAfter(block), nil
}

// runVerifier polls the published ledger, verifying each block once, until
// the chain is complete.
func runVerifier(ctx context.Context, reader *superposition.Reader[*ledger.Ledger], p Params, polls *atomic.Uint64) error {
	var v ledger.Verifier

	for {
		n, err := superposition.ReadValue(reader, v.Check)
		if err != nil {
			return err
		}

		polls.Add(1)

		if n == p.ChainLength {
			p.Logger.Debug().Str("role", "reader").Int("length", n).Int("checked", v.Checked()).Msg("chain verified")

			return nil
		}

		if p.PollInterval <= 0 {
			runtime.Gosched()
		}

		err = waitPoll(ctx, p.PollInterval)
		if err != nil {
			return fmt.Errorf("%w: verified %d of %d blocks: %w", ErrIncomplete, v.Next(), p.ChainLength, err)
		}
	}
}

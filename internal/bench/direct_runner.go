package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

// DirectRunner signs, appends and verifies every block on the calling
// goroutine.
type DirectRunner struct{}

// Mode returns [ModeDirect].
func (DirectRunner) Mode() Mode { return ModeDirect }

// Run appends blocks until the ledger is ChainLength long, verifying each new
// block right after appending it.
func (DirectRunner) Run(ctx context.Context, p Params) (Result, error) {
	cpuStart := sampleCPU()
	start := time.Now()

	l := ledger.New()
	b := ledger.NewBuilder(l.Tip().TxDigest)

	for l.Len() != p.ChainLength {
		err := ctx.Err()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %d of %d blocks: %w", ErrIncomplete, l.Len(), p.ChainLength, err)
		}

		err = p.Stream.fill(b, p.BlockSize)
		if err != nil {
			return Result{}, err
		}

		block, err := b.Seal(l.Tip())
		if err != nil {
			return Result{}, err
		}

		err = l.Append(block)
		if err != nil {
			return Result{}, err
		}

		err = l.VerifyLast()
		if err != nil {
			return Result{}, err
		}
	}

	elapsed := time.Since(start)
	cpu := sampleCPU().Sub(cpuStart)

	if p.FinalVerify {
		err := l.Verify(0)
		if err != nil {
			return Result{}, err
		}

		p.Logger.Debug().Int("length", l.Len()).Msg("final verification passed")
	}

	return Result{
		Mode:         ModeDirect,
		Length:       l.Len(),
		Transactions: l.Transactions(),
		Elapsed:      elapsed,
		CPU:          cpu,
	}, nil
}
